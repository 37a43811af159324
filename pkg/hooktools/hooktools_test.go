package hooktools

import (
	"context"
	"testing"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type TestLogger struct{}

func (l *TestLogger) LogLevelf(level int, format string, args ...interface{}) {}
func (l *TestLogger) Debugf(format string, args ...interface{})               {}
func (l *TestLogger) Infof(format string, args ...interface{})                {}
func (l *TestLogger) Warnf(format string, args ...interface{})                {}
func (l *TestLogger) Errorf(format string, args ...interface{})               {}

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	called := m.Called(name, args)
	if called.Get(0) == nil {
		return nil, called.Error(1)
	}
	return called.Get(0).([]byte), called.Error(1)
}

func TestRelationGet(t *testing.T) {
	runner := &MockRunner{}
	runner.On("Run", "relation-get", []string{"--format=json", "-r", "monitors:3", "-", "nrpe/0"}).
		Return([]byte(`{"target-id": "web-1", "ingress-address": "10.0.0.5"}`), nil)

	data, err := NewClient(runner).RelationGet(context.Background(), "monitors:3", "nrpe/0")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"target-id": "web-1", "ingress-address": "10.0.0.5"}, data)
	runner.AssertExpectations(t)
}

func TestRelationGet_Empty(t *testing.T) {
	for _, out := range []string{"", "null\n", "{}"} {
		runner := &MockRunner{}
		runner.On("Run", "relation-get", mock.Anything).Return([]byte(out), nil)

		data, err := NewClient(runner).RelationGet(context.Background(), "", "nrpe/0")
		require.NoError(t, err)
		assert.Empty(t, data)
	}
}

func TestRelationGet_Malformed(t *testing.T) {
	runner := &MockRunner{}
	runner.On("Run", "relation-get", mock.Anything).Return([]byte(`["not", "a", "map"]`), nil)

	_, err := NewClient(runner).RelationGet(context.Background(), "monitors:3", "nrpe/0")
	assert.True(t, errors.IsMalformedPayloadError(err))
}

func TestConfigGet(t *testing.T) {
	runner := &MockRunner{}
	runner.On("Run", "config-get", []string{"--format=json", "--all"}).Return([]byte(`{"extraconfig": ""}`), nil)

	out, err := NewClient(runner).ConfigGet(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"extraconfig": ""}`, string(out))
}

func TestStatusSet(t *testing.T) {
	runner := &MockRunner{}
	runner.On("Run", "status-set", []string{"active", ""}).Return([]byte{}, nil)

	client := NewClient(runner)
	require.NoError(t, client.StatusSet(context.Background(), StatusActive, ""))
	assert.True(t, errors.IsValidationError(client.StatusSet(context.Background(), "happy", "")))
	runner.AssertNumberOfCalls(t, "Run", 1)
}

func TestExecRunner_MissingTool(t *testing.T) {
	runner := &ExecRunner{Logger: &TestLogger{}}

	_, err := runner.Run(context.Background(), "definitely-not-a-juju-hook-tool")
	assert.True(t, errors.IsNotFoundError(err))
}
