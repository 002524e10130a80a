package adapter

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casbridge/internal/pkg/constants"
)

// memOptions 是 OptionStore 的内存桩。
type memOptions struct {
	values map[string]string
}

func newMemOptions() *memOptions {
	return &memOptions{values: map[string]string{}}
}

func (m *memOptions) GetOption(_ context.Context, name string) (string, error) {
	return m.values[name], nil
}

func (m *memOptions) SetOption(_ context.Context, name, value string) error {
	m.values[name] = value
	return nil
}

func (m *memOptions) DeleteOption(_ context.Context, name string) error {
	delete(m.values, name)
	return nil
}

func TestBaseURLRemoteHost(t *testing.T) {
	r := NewCassandraHostResolver(newMemOptions(), "", false)
	r.lookupHost = func(string) ([]string, error) {
		return []string{"93.184.216.34"}, nil
	}

	assert.Equal(t, constants.HostAPIURL, r.BaseURL(context.Background()))
}

func TestBaseURLLoopbackFallsBackToHTTP(t *testing.T) {
	r := NewCassandraHostResolver(newMemOptions(), "", false)
	r.lookupHost = func(string) ([]string, error) {
		return []string{constants.LoopbackIPAddress}, nil
	}

	// 同机部署时域名解析回环，必须改走纯 HTTP 备用入口
	assert.Equal(t, constants.AlternateHostAPIURL, r.BaseURL(context.Background()))
}

func TestBaseURLDebugOverride(t *testing.T) {
	r := NewCassandraHostResolver(newMemOptions(), "http://localhost:9000/api/v1", true)
	r.lookupHost = func(string) ([]string, error) {
		return []string{"93.184.216.34"}, nil
	}

	assert.Equal(t, "http://localhost:9000/api/v1", r.BaseURL(context.Background()))
}

func TestBaseURLOverrideIgnoredOutsideDebug(t *testing.T) {
	r := NewCassandraHostResolver(newMemOptions(), "http://localhost:9000/api/v1", false)
	r.lookupHost = func(string) ([]string, error) {
		return []string{"93.184.216.34"}, nil
	}

	assert.Equal(t, constants.HostAPIURL, r.BaseURL(context.Background()))
}

func TestResolveCachesAndPersists(t *testing.T) {
	options := newMemOptions()
	lookups := 0
	r := NewCassandraHostResolver(options, "", false)
	r.lookupHost = func(string) ([]string, error) {
		lookups++
		return []string{"93.184.216.34"}, nil
	}

	r.BaseURL(context.Background())
	r.BaseURL(context.Background())
	r.BaseURL(context.Background())

	// 解析只做一次，结果同时落到 OptionStore
	assert.Equal(t, 1, lookups)
	assert.Equal(t, "93.184.216.34", options.values[constants.OptionCassandraIPAddress])
}

func TestResolvePrefersStoredOption(t *testing.T) {
	options := newMemOptions()
	options.values[constants.OptionCassandraIPAddress] = constants.LoopbackIPAddress

	r := NewCassandraHostResolver(options, "", false)
	r.lookupHost = func(string) ([]string, error) {
		t.Fatal("dns lookup should not run when the option store has a value")
		return nil, nil
	}

	assert.Equal(t, constants.AlternateHostAPIURL, r.BaseURL(context.Background()))
}

func TestInvalidateForcesReResolve(t *testing.T) {
	options := newMemOptions()
	lookups := 0
	r := NewCassandraHostResolver(options, "", false)
	r.lookupHost = func(string) ([]string, error) {
		lookups++
		return []string{"93.184.216.34"}, nil
	}

	r.BaseURL(context.Background())
	require.Equal(t, 1, lookups)

	r.Invalidate(context.Background())
	assert.Empty(t, options.values)

	r.BaseURL(context.Background())
	assert.Equal(t, 2, lookups)
}

func TestResolutionFailureFallsBackToMainEntry(t *testing.T) {
	r := NewCassandraHostResolver(newMemOptions(), "", false)
	r.lookupHost = func(string) ([]string, error) {
		return nil, fmt.Errorf("no such host")
	}

	// 解析失败绝不报错，一律回退主入口
	assert.Equal(t, constants.HostAPIURL, r.BaseURL(context.Background()))
}
