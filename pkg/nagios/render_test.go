package nagios

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var blockHeader = regexp.MustCompile(`(?m)^define (\w+) \{$`)

func countBlocks(t *testing.T, content string) map[string]int {
	t.Helper()
	counts := make(map[string]int)
	for _, m := range blockHeader.FindAllStringSubmatch(content, -1) {
		counts[m[1]]++
	}
	return counts
}

func TestRender_Golden(t *testing.T) {
	target := MonitoredTarget{
		TargetID:       "web-1",
		IngressAddress: "10.0.0.5",
		Checks:         []string{"disk", "cpu"},
	}

	content, err := Render(target)
	require.NoError(t, err)

	golden, err := os.ReadFile("testdata/web-1.cfg")
	require.NoError(t, err)
	assert.Equal(t, string(golden), content)
}

func TestRender_Deterministic(t *testing.T) {
	target := MonitoredTarget{
		TargetID:       "db-0",
		IngressAddress: "192.168.1.20",
		Checks:         []string{"load", "swap", "mem"},
	}

	first, err := Render(target)
	require.NoError(t, err)
	second, err := Render(target)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRender_ServiceBlockPerCheck(t *testing.T) {
	tests := []struct {
		name   string
		checks []string
	}{
		{name: "no checks", checks: nil},
		{name: "one check", checks: []string{"load"}},
		{name: "several checks", checks: []string{"disk", "cpu", "load", "users"}},
		{name: "repeated check", checks: []string{"disk", "disk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := Render(MonitoredTarget{TargetID: "web-1", IngressAddress: "10.0.0.5", Checks: tt.checks})
			require.NoError(t, err)

			counts := countBlocks(t, content)
			assert.Equal(t, 1, counts[ObjectTypeHost])
			assert.Equal(t, len(tt.checks), counts[ObjectTypeService])

			objects := Objects(MonitoredTarget{TargetID: "web-1", Checks: tt.checks})
			require.Len(t, objects, len(tt.checks)+1)
			for i, check := range tt.checks {
				service := objects[i+1]
				command, _ := service.Get("check_command")
				description, _ := service.Get("service_description")
				hostName, _ := service.Get("host_name")
				assert.Equal(t, "nrpe_"+check, command)
				assert.Equal(t, "nrpe_"+check, description)
				assert.Equal(t, "web-1", hostName)
			}
		})
	}
}

func TestHostObject_Attributes(t *testing.T) {
	host := HostObject(MonitoredTarget{TargetID: "web-1", IngressAddress: "10.0.0.5"})

	assert.Equal(t, []string{
		"host_name", "use", "address",
		"max_check_attempts", "check_period", "contact_groups",
		"notification_options", "notification_interval", "notification_period",
		"icon_image", "icon_image_alt", "vrml_image", "statusmap_image",
	}, host.Keys())

	use, _ := host.Get("use")
	assert.Equal(t, "generic-host", use)
	address, _ := host.Get("address")
	assert.Equal(t, "10.0.0.5", address)
}

func TestRender_StartsWithHostBlock(t *testing.T) {
	content, err := Render(MonitoredTarget{TargetID: "web-1", Checks: []string{"disk"}})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(content, "define host {\n"))
	assert.True(t, strings.HasSuffix(content, "}\n"))
}

func TestRender_RejectsInvalidTarget(t *testing.T) {
	tests := []struct {
		name   string
		target MonitoredTarget
	}{
		{name: "empty target ID", target: MonitoredTarget{}},
		{name: "path in target ID", target: MonitoredTarget{TargetID: "../etc/passwd"}},
		{name: "check with space", target: MonitoredTarget{TargetID: "web-1", Checks: []string{"check disk"}}},
		{name: "check closing block", target: MonitoredTarget{TargetID: "web-1", Checks: []string{"disk}"}}},
		{name: "empty check", target: MonitoredTarget{TargetID: "web-1", Checks: []string{""}}},
		{name: "address with newline", target: MonitoredTarget{TargetID: "web-1", IngressAddress: "10.0.0.5\nuse evil"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := Render(tt.target)
			assert.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
			assert.Empty(t, content)
		})
	}
}

func TestConfigPath(t *testing.T) {
	p, err := ConfigPath("/etc/nagios4/conf.d", "web-1")
	require.NoError(t, err)
	assert.Equal(t, "/etc/nagios4/conf.d/web-1.cfg", p)

	_, err = ConfigPath("/etc/nagios4/conf.d", "a/b")
	assert.True(t, errors.IsValidationError(err))
}

func TestObjectDefinition_SetReplacesInPlace(t *testing.T) {
	o := NewObjectDefinition(ObjectTypeHost).
		Set("host_name", "a").
		Set("use", "generic-host").
		Set("host_name", "b")

	assert.Equal(t, []string{"host_name", "use"}, o.Keys())
	value, ok := o.Get("host_name")
	assert.True(t, ok)
	assert.Equal(t, "b", value)

	_, ok = o.Get("address")
	assert.False(t, ok)
}

func TestObjectDefinition_LongKeyKeepsSeparator(t *testing.T) {
	key := strings.Repeat("k", 40)
	o := NewObjectDefinition(ObjectTypeHost).Set(key, "v")

	assert.Equal(t, "define host {\n  "+key+" v\n}\n", o.String())
}
