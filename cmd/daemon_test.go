package cmd

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/theirongolddev/adburn/internal/config"

	"github.com/spf13/cobra"
)

func daemonFlagsForTest() *cobra.Command {
	c := &cobra.Command{Use: "daemon"}
	c.Flags().StringVar(&flagDaemonAddr, "addr", "127.0.0.1:1", "")
	c.Flags().DurationVar(&flagDaemonInterval, "interval", time.Minute, "")
	c.Flags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 10, "")
	return c
}

func TestDaemonConfig_ConfigWinsOverDefaultFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Daemon.Addr = "127.0.0.1:9000"
	cfg.Daemon.IntervalSec = 30

	dc := daemonConfig(daemonFlagsForTest(), cfg)
	if dc.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q, want config value", dc.Addr)
	}
	if dc.Interval != 30*time.Second {
		t.Errorf("interval = %s, want 30s", dc.Interval)
	}
	if dc.Classifier == nil {
		t.Error("classifier not built from config")
	}
}

func TestDaemonConfig_ExplicitFlagsOverride(t *testing.T) {
	c := daemonFlagsForTest()
	if err := c.Flags().Set("addr", "0.0.0.0:7000"); err != nil {
		t.Fatal(err)
	}
	if err := c.Flags().Set("interval", "5s"); err != nil {
		t.Fatal(err)
	}

	dc := daemonConfig(c, config.DefaultConfig())
	if dc.Addr != "0.0.0.0:7000" || dc.Interval != 5*time.Second {
		t.Fatalf("got addr=%q interval=%s, want flag values", dc.Addr, dc.Interval)
	}
	if dc.EventsBuffer != 200 {
		t.Errorf("events buffer = %d, want config value 200", dc.EventsBuffer)
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", "x", "--detach=true"})
	want := []string{"daemon", "--addr", "x"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filterDetachArg = %v, want %v", got, want)
	}
}

func TestPIDFileRoundTripAndStaleCleanup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adburnd.pid")
	if err := writePID(path, 424242); err != nil {
		t.Fatal(err)
	}
	pid, err := readPID(path)
	if err != nil || pid != 424242 {
		t.Fatalf("readPID = %d, %v", pid, err)
	}
	if err := ensureDaemonNotRunning(filepath.Join(t.TempDir(), "missing.pid")); err != nil {
		t.Fatalf("missing pid file should be fine: %v", err)
	}
}

func TestMaskAPIKey(t *testing.T) {
	cases := map[string]string{
		"EAABsbCS1iHgBAKZCZAtoken1234": "EAABsbCS...1234",
		"EAAB12":                       "EAAB...",
		"abc":                          "****",
	}
	for in, want := range cases {
		if got := maskAPIKey(in); got != want {
			t.Errorf("maskAPIKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadConfig_AccountFlagOverrides(t *testing.T) {
	t.Setenv("FACEBOOK_ACCESS_TOKEN", "")
	oldPath, oldAccounts := flagConfigPath, flagAccounts
	t.Cleanup(func() { flagConfigPath, flagAccounts = oldPath, oldAccounts })

	flagConfigPath = filepath.Join(t.TempDir(), "config.toml")
	flagAccounts = []string{"act_5", " act_5 ", "act_6"}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.Accounts.IDs, []string{"act_5", "act_6"}) {
		t.Fatalf("accounts = %v, want deduped flag values", cfg.Accounts.IDs)
	}
}
