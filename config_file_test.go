package taskpool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseConfigBytes_OverridesOnlyGivenFields(t *testing.T) {
	data := []byte(`
processes: 4
supervisor_interval: 50ms
error_tagging: true
`)
	cfg, err := ParseConfigBytes(data)
	require.NoError(t, err)
	require.EqualValues(t, 4, cfg.Processes)
	require.Equal(t, 50*time.Millisecond, cfg.SupervisorInterval)
	require.True(t, cfg.ErrorTagging)

	d := defaultConfig()
	require.Equal(t, d.SubmissionBufferSize, cfg.SubmissionBufferSize)
	require.Equal(t, d.OutputBufferSize, cfg.OutputBufferSize)
}

func TestParseConfigBytes_EmptyDataYieldsDefaults(t *testing.T) {
	cfg, err := ParseConfigBytes([]byte(``))
	require.NoError(t, err)
	d := defaultConfig()
	require.Equal(t, d.Processes, cfg.Processes)
	require.Equal(t, d.SupervisorInterval, cfg.SupervisorInterval)
}

func TestParseConfigBytes_RejectsBadDuration(t *testing.T) {
	_, err := ParseConfigBytes([]byte("supervisor_interval: not-a-duration\n"))
	require.Error(t, err)
}

func TestLoadConfigFile_MissingFileReturnsError(t *testing.T) {
	_, err := LoadConfigFile("/nonexistent/path/to/taskpool-config.yaml")
	require.Error(t, err)
}
