package commands

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedCmd(t *testing.T) {
	cmd := NewEmbedCmd()

	assert.Equal(t, "embed", cmd.Use)
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
		assert.NotNil(t, sub.RunE, "%s should have RunE", sub.Name())
	}
	assert.True(t, names["run"])
	assert.True(t, names["reembed"])
}

func TestParseJobIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids, err := parseJobIDs([]string{a.String(), b.String()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	_, err = parseJobIDs([]string{a.String(), "job-42"})
	assert.ErrorContains(t, err, "job-42")
}

func TestReembedCmd_RequiresIDs(t *testing.T) {
	cmd := newEmbedReembedCmd()
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{uuid.NewString()}))
}
