package repository_test

import (
	"testing"

	"taskboard/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDiffIDSets(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	tests := []struct {
		name        string
		current     []uuid.UUID
		next        []uuid.UUID
		wantAdded   []uuid.UUID
		wantRemoved []uuid.UUID
	}{
		{
			name:        "no change",
			current:     []uuid.UUID{a, b},
			next:        []uuid.UUID{a, b},
			wantAdded:   nil,
			wantRemoved: nil,
		},
		{
			name:        "add and remove",
			current:     []uuid.UUID{a, b},
			next:        []uuid.UUID{b, c},
			wantAdded:   []uuid.UUID{c},
			wantRemoved: []uuid.UUID{a},
		},
		{
			name:        "clear all",
			current:     []uuid.UUID{a, b},
			next:        nil,
			wantAdded:   nil,
			wantRemoved: []uuid.UUID{a, b},
		},
		{
			name:        "from empty",
			current:     nil,
			next:        []uuid.UUID{a},
			wantAdded:   []uuid.UUID{a},
			wantRemoved: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := repository.DiffIDSets(tt.current, tt.next)
			assert.Equal(t, tt.wantAdded, added)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}

func TestSlugify(t *testing.T) {
	slug := repository.Slugify("Acme Corp!")
	assert.Regexp(t, `^acme-corp-[0-9a-z]+$`, slug)

	// Two calls for the same name still differ by the timestamp suffix shape.
	assert.Regexp(t, `^widgets-inc-[0-9a-z]+$`, repository.Slugify("Widgets, Inc."))
}
