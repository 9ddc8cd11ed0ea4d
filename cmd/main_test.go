package main

import (
	"bufio"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"icredeemer/internal/cache"
	"icredeemer/internal/config"
	"icredeemer/internal/input"
	"icredeemer/internal/input/inputtest"
)

type fakeClipboard struct {
	contents string
}

func (f *fakeClipboard) Read() (string, error) { return f.contents, nil }

func (f *fakeClipboard) Write(text string) error {
	f.contents = text
	return nil
}

type testEnv struct {
	app    *app
	driver *inputtest.Recorder
	out    *strings.Builder
	dir    string
}

func newTestEnv(t *testing.T, stdin string) *testEnv {
	t.Helper()
	env := &testEnv{
		driver: inputtest.New(5, 7),
		out:    &strings.Builder{},
		dir:    filepath.Join(t.TempDir(), "icredeemer"),
	}
	env.app = &app{
		in:  bufio.NewReader(strings.NewReader(stdin)),
		out: env.out,
		log: zap.NewNop(),
		newDriver: func(string) (input.Driver, error) {
			return env.driver, nil
		},
		clipboard: &fakeClipboard{contents: "mine"},
		sleep:     func(time.Duration) {},
	}
	return env
}

func (e *testEnv) writeConfig(t *testing.T, mutate func(*config.Config)) {
	t.Helper()
	m, err := config.NewManager(e.dir, nil)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Progress = config.ProgressNone
	cfg.Instructions.UnlockChest = config.Coordinates{X: 100, Y: 200}
	if mutate != nil {
		mutate(cfg)
	}
	m.Set(cfg)
	require.NoError(t, m.Save())
}

func (e *testEnv) execute(args ...string) error {
	cmd := newRootCmd(e.app)
	cmd.SetArgs(append([]string{"--config-dir", e.dir}, args...))
	cmd.SetOut(e.out)
	cmd.SetErr(e.out)
	return cmd.Execute()
}

func TestPlanRun(t *testing.T) {
	withRemote := &config.Config{
		DefaultStrategy: config.StrategyLocal,
		Remote:          &config.Remote{URL: "https://codes.example", MaxRetries: 3, TimeoutMS: 1000},
	}
	local := &config.Config{DefaultStrategy: config.StrategyLocal}
	remoteStrategy := &config.Config{DefaultStrategy: config.StrategyRemote}
	remoteStrategyConfigured := &config.Config{DefaultStrategy: config.StrategyRemote, Remote: withRemote.Remote}

	tests := []struct {
		name       string
		opts       options
		codes      []string
		cfg        *config.Config
		wantCode   int
		wantLocal  bool
		wantRemote *config.Remote
	}{
		{name: "codes given", codes: []string{"A"}, cfg: local, wantLocal: true},
		{name: "codes win over remote strategy", codes: []string{"A"}, cfg: remoteStrategyConfigured, wantLocal: true},
		{name: "nothing given", cfg: local, wantCode: exitCLI},
		{name: "nothing given, remote configured but local strategy", cfg: withRemote, wantCode: exitCLI},
		{name: "prefer remote without remote", opts: options{preferRemote: true}, cfg: local, wantCode: exitLocalRun},
		{name: "remote strategy without remote", cfg: remoteStrategy, wantCode: exitLocalRun},
		{name: "remote strategy with remote", cfg: remoteStrategyConfigured, wantRemote: withRemote.Remote},
		{name: "prefer remote with remote", opts: options{preferRemote: true}, cfg: withRemote, wantRemote: withRemote.Remote},
		{
			name:       "url without remote",
			opts:       options{url: "https://list.example"},
			cfg:        local,
			wantRemote: &config.Remote{URL: "https://list.example", MaxRetries: 1, TimeoutMS: 4000},
		},
		{
			name:       "configured remote wins over url",
			opts:       options{url: "https://list.example"},
			cfg:        withRemote,
			wantRemote: withRemote.Remote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planRun(tt.opts, tt.codes, tt.cfg)
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, exitCode(err))
				return
			}
			require.NoError(t, err)
			if tt.wantLocal {
				assert.Nil(t, plan.remote)
				assert.Equal(t, tt.codes, plan.codes)
			} else {
				assert.Equal(t, tt.wantRemote, plan.remote)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitCLI, exitCode(errors.New("unknown flag")))
	assert.Equal(t, exitRunFailed, exitCode(exitWith(exitRunFailed, errors.New("x"))))
}

func TestURLAndCodesConflict(t *testing.T) {
	env := newTestEnv(t, "")
	env.writeConfig(t, nil)

	err := env.execute("--no-interaction", "--url", "http://localhost", "-c", "AAAABBBBCCCC")
	assert.Equal(t, exitCLI, exitCode(err))
	assert.Empty(t, env.driver.Recorded())
}

func TestSetupRefusedWithoutInteraction(t *testing.T) {
	env := newTestEnv(t, "")

	err := env.execute("--no-interaction", "-c", "AAAABBBBCCCC")
	assert.Equal(t, exitSetup, exitCode(err))
}

func TestRunLocalCodes(t *testing.T) {
	env := newTestEnv(t, "")
	env.writeConfig(t, nil)

	err := env.execute("--no-interaction", "-c", "AAAA-BBBB-CCCC", "DDDDEEEEFFFF")
	require.NoError(t, err)

	assert.Contains(t, env.out.String(), "Redeeming 2 codes: AAAA-BBBB-CCCC, DDDDEEEEFFFF")
	assert.Contains(t, env.out.String(), "Redeemed 2 codes.")

	c, err := cache.NewFile(env.dir).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAA-BBBB-CCCC", "DDDDEEEEFFFF"}, c.Entries())

	// a second run skips both
	env.driver.Reset()
	require.NoError(t, env.execute("--no-interaction", "AAAA-BBBB-CCCC", "DDDDEEEEFFFF"))
	assert.Empty(t, env.driver.Recorded())
	assert.Contains(t, env.out.String(), "No (new) codes to redeem")
}

func TestRunPromptsBeforeStarting(t *testing.T) {
	env := newTestEnv(t, "\n")
	env.writeConfig(t, func(c *config.Config) { c.Cache.Enabled = false })

	require.NoError(t, env.execute("AAAABBBBCCCC"))
	assert.Contains(t, env.out.String(), "press ENTER to start redemption")
	assert.NotEmpty(t, env.driver.Recorded())

	_, err := os.Stat(filepath.Join(env.dir, cache.FileName))
	assert.True(t, os.IsNotExist(err), "disabled cache writes nothing")
}

func TestRunBatchFailure(t *testing.T) {
	env := newTestEnv(t, "")
	env.writeConfig(t, nil)
	env.driver.FailOn = func(c inputtest.Call) error {
		if c == "tap Return" {
			return errors.New("device gone")
		}
		return nil
	}

	err := env.execute("--no-interaction", "-c", "AAAABBBBCCCC")
	assert.Equal(t, exitRunFailed, exitCode(err))
	assert.Contains(t, env.out.String(), "Failed to redeem 1 of 1 codes:")
	assert.Contains(t, env.out.String(), "  AAAABBBBCCCC")
}

func TestRunInvalidConfig(t *testing.T) {
	env := newTestEnv(t, "")
	env.writeConfig(t, nil)

	m, err := config.NewManager(env.dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(m.Path(), []byte("input: {backend: xdotool}\n"), 0644))

	err = env.execute("--no-interaction", "-c", "AAAABBBBCCCC")
	assert.Equal(t, exitConfig, exitCode(err))
}

func TestRunRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"code":"AAAA-BBBB-CCCC"}]`))
	}))
	defer srv.Close()

	env := newTestEnv(t, "")
	env.writeConfig(t, nil)

	require.NoError(t, env.execute("--no-interaction", "--url", srv.URL))
	assert.Contains(t, env.out.String(), "Redeeming 1 codes: AAAA-BBBB-CCCC")
}

func TestRunRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	env := newTestEnv(t, "")
	env.writeConfig(t, nil)

	err := env.execute("--no-interaction", "--url", srv.URL)
	assert.Equal(t, exitRemoteRun, exitCode(err))
	assert.Empty(t, env.driver.Recorded())
}

func TestCleanCommand(t *testing.T) {
	env := newTestEnv(t, "")
	env.writeConfig(t, nil)

	require.NoError(t, env.execute("clean"))
	assert.Contains(t, env.out.String(), "Config file removed successfully!")

	_, err := os.Stat(filepath.Join(env.dir, config.FileName))
	assert.True(t, os.IsNotExist(err))
}

func TestBustCacheCommand(t *testing.T) {
	env := newTestEnv(t, "")
	store := cache.NewFile(env.dir)
	c := cache.New()
	c.Push("AAAABBBBCCCC")
	require.NoError(t, store.Save(c))

	require.NoError(t, env.execute("bust-cache"))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Zero(t, loaded.Len())
	assert.Contains(t, env.out.String(), "Cache cleared.")
}

func TestSetupCommand(t *testing.T) {
	env := newTestEnv(t, "\n\n\n")

	require.NoError(t, env.execute("setup"))

	m, err := config.NewManager(env.dir, nil)
	require.NoError(t, err)
	require.NoError(t, m.Load())
	assert.Equal(t, config.Coordinates{X: 5, Y: 7}, m.Get().Instructions.UnlockChest)
	assert.Equal(t, config.StrategyLocal, m.Get().DefaultStrategy)
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t, "")

	require.NoError(t, env.execute("version"))
	assert.Equal(t, "icredeemer version "+version+"\n", env.out.String())
}
