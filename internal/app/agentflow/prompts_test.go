package agentflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPromptsCarryMarkers(t *testing.T) {
	prompts := DefaultPrompts()

	assert.Contains(t, prompts.PlannerSystem, "task-planning expert")
	assert.Contains(t, prompts.PlannerExamples, "depends_on")
	assert.Contains(t, prompts.ReflectorSystem, "result-quality assessor")
}

func TestLoadPromptsOverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := `planner_system_prompt: "custom planner %s %s"
reflector_system_prompt: "custom reflector %s %s %d %s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	prompts, err := LoadPrompts(path)
	require.NoError(t, err)

	assert.Equal(t, "custom planner %s %s", prompts.PlannerSystem)
	assert.Equal(t, "custom reflector %s %s %d %s", prompts.ReflectorSystem)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, DefaultPrompts().PlannerExamples, prompts.PlannerExamples)
}

func TestLoadPromptsMissingFile(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
