/*
Copyright 2024 Doozez Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigFromEnv(t *testing.T) {
	t.Setenv("DOOZEZ_DATA_SOURCE_DNS", "postgres://postgres:@localhost:5432/doozez?sslmode=disable")
	t.Setenv("DOOZEZ_REDIS_DNS", "localhost:6379")
	t.Setenv("DOOZEZ_GATEWAY_BASE_URL", "https://api.gateway.test")

	err := InitConfig("does-not-exist.json")
	require.NoError(t, err)

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "postgres://postgres:@localhost:5432/doozez?sslmode=disable", cnf.DataSource.Dns)
	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
	assert.Equal(t, "sandbox", cnf.Gateway.Environment)
	assert.Equal(t, "doozez-job-executor", cnf.Queue.JobExecutorQueue)
	assert.Equal(t, "doozez-event-executor", cnf.Queue.EventExecutorQueue)
}

func TestInitConfigMissingDataSource(t *testing.T) {
	os.Unsetenv("DOOZEZ_DATA_SOURCE_DNS")
	os.Unsetenv("DOOZEZ_REDIS_DNS")

	err := InitConfig("does-not-exist.json")
	assert.Error(t, err)
}

func TestInitConfigFromFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "doozez*.json")
	require.NoError(t, err)
	_, err = f.WriteString(`{
		"project_name": "doozez test",
		"data_source": {"dns": "postgres://localhost/doozez"},
		"redis": {"dns": "localhost:6379"},
		"gateway": {"base_url": "https://api.gateway.test", "access_token": "tok"},
		"rate_limit": {"requests_per_second": 10}
	}`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	err = InitConfig(f.Name())
	require.NoError(t, err)

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "doozez test", cnf.ProjectName)
	require.NotNil(t, cnf.RateLimit.Burst)
	assert.Equal(t, 20, *cnf.RateLimit.Burst)
}
