package repository_test

import (
	"testing"

	"taskboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestMergeTagValues(t *testing.T) {
	values := []datatypes.JSON{
		datatypes.JSON(`["urgent","backend"]`),
		datatypes.JSON(`["backend","design"]`),
		datatypes.JSON(`["api"]`),
	}

	assert.Equal(t, []string{"api", "backend", "design", "urgent"}, repository.MergeTagValues(values))
}

func TestMergeTagValues_SkipsNonArrayPayloads(t *testing.T) {
	values := []datatypes.JSON{
		datatypes.JSON(`{"labelId":"1"}`),
		datatypes.JSON(`"loose string"`),
		datatypes.JSON(`["kept"]`),
		datatypes.JSON(`[1,2,3]`),
	}

	assert.Equal(t, []string{"kept"}, repository.MergeTagValues(values))
}

func TestMergeTagValues_Empty(t *testing.T) {
	assert.Empty(t, repository.MergeTagValues(nil))
	assert.Empty(t, repository.MergeTagValues([]datatypes.JSON{datatypes.JSON(`[]`), datatypes.JSON(`[""]`)}))
}
