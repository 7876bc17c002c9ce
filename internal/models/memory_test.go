package models

import (
	"testing"
	"time"
)

func TestEpisodicMemory_Validate(t *testing.T) {
	tests := []struct {
		name    string
		memory  EpisodicMemory
		wantErr bool
	}{
		{
			name: "valid memory",
			memory: EpisodicMemory{
				UserID:    "u1",
				SessionID: "s1",
				Timestamp: time.Now(),
				Content:   "met Alice at the conference",
				Metadata:  EpisodicMetadata{Importance: 0.8},
			},
			wantErr: false,
		},
		{
			name:    "missing user id",
			memory:  EpisodicMemory{Content: "orphan"},
			wantErr: true,
		},
		{
			name: "importance above range",
			memory: EpisodicMemory{
				UserID:   "u1",
				Metadata: EpisodicMetadata{Importance: 1.5},
			},
			wantErr: true,
		},
		{
			name: "importance below range",
			memory: EpisodicMemory{
				UserID:   "u1",
				Metadata: EpisodicMetadata{Importance: -0.1},
			},
			wantErr: true,
		},
		{
			name: "importance at boundaries",
			memory: EpisodicMemory{
				UserID:   "u1",
				Metadata: EpisodicMetadata{Importance: 1.0},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.memory.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSemanticMemory_Validate(t *testing.T) {
	tests := []struct {
		name       string
		memory     SemanticMemory
		dimensions int
		wantErr    bool
	}{
		{
			name: "valid memory",
			memory: SemanticMemory{
				UserID:   "u1",
				Concept:  "Machine Learning",
				Metadata: SemanticMetadata{Confidence: 0.9},
			},
			dimensions: 4,
			wantErr:    false,
		},
		{
			name: "missing concept",
			memory: SemanticMemory{
				UserID:   "u1",
				Metadata: SemanticMetadata{Confidence: 0.5},
			},
			dimensions: 4,
			wantErr:    true,
		},
		{
			name: "confidence out of range",
			memory: SemanticMemory{
				UserID:   "u1",
				Concept:  "ML",
				Metadata: SemanticMetadata{Confidence: 1.2},
			},
			dimensions: 4,
			wantErr:    true,
		},
		{
			name: "vector dimension mismatch",
			memory: SemanticMemory{
				UserID:   "u1",
				Concept:  "ML",
				Vector:   []float32{0.1, 0.2},
				Metadata: SemanticMetadata{Confidence: 0.5},
			},
			dimensions: 4,
			wantErr:    true,
		},
		{
			name: "vector matches configured dimension",
			memory: SemanticMemory{
				UserID:   "u1",
				Concept:  "ML",
				Vector:   []float32{0.1, 0.2, 0.3, 0.4},
				Metadata: SemanticMetadata{Confidence: 0.5},
			},
			dimensions: 4,
			wantErr:    false,
		},
		{
			name: "unknown relationship type",
			memory: SemanticMemory{
				UserID:        "u1",
				Concept:       "ML",
				Metadata:      SemanticMetadata{Confidence: 0.5},
				Relationships: map[RelationType][]string{"FRIENDS_WITH": {"x"}},
			},
			dimensions: 4,
			wantErr:    true,
		},
		{
			name: "internal edge types rejected on semantic memories",
			memory: SemanticMemory{
				UserID:        "u1",
				Concept:       "ML",
				Metadata:      SemanticMetadata{Confidence: 0.5},
				Relationships: map[RelationType][]string{RelDerivedFrom: {"x"}},
			},
			dimensions: 4,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.memory.Validate(tt.dimensions)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInverseRelations_Symmetry(t *testing.T) {
	for relType, inverse := range InverseRelations {
		back, ok := InverseRelations[inverse]
		if !ok {
			t.Errorf("inverse of %s (%s) has no inverse entry", relType, inverse)
			continue
		}
		if back != relType {
			t.Errorf("inverse of inverse of %s = %s, want %s", relType, back, relType)
		}
	}
}

func TestValidateRelationType(t *testing.T) {
	if err := ValidateRelationType(RelCauses); err != nil {
		t.Errorf("RelCauses should be valid: %v", err)
	}
	if err := ValidateRelationType(RelNextInSession); err == nil {
		t.Error("RelNextInSession is repository-internal and should be rejected")
	}
	if err := ValidateRelationType("BOGUS"); err == nil {
		t.Error("unknown relation type should be rejected")
	}
}
