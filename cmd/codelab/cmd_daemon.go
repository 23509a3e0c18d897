package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const pidFile = "codelabd.pid"

var httpClient = &http.Client{Timeout: 2 * time.Second}

func init() {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Control the codelabd browser UI daemon",
	}
	daemonCmd.AddCommand(
		&cobra.Command{Use: "start", Short: "Start the daemon in the background", RunE: runDaemonStart},
		&cobra.Command{Use: "stop", Short: "Stop the daemon", RunE: runDaemonStop},
		&cobra.Command{Use: "status", Short: "Show daemon status", RunE: runDaemonStatus},
		&cobra.Command{Use: "logs", Short: "Show recent daemon logs", RunE: runDaemonLogs},
	)
	rootCmd.AddCommand(daemonCmd)
}

// daemonAddr is the base URL of the configured daemon
func daemonAddr() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s:%d", cfg.Daemon.Bind, cfg.Daemon.Port), nil
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	addr, err := daemonAddr()
	if err != nil {
		return err
	}
	if isRunning(addr) {
		fmt.Fprintf(out, "✓ Daemon is already running at %s\n", addr)
		return nil
	}

	dir, err := codelabDir()
	if err != nil {
		return err
	}

	binary, err := findDaemonBinary()
	if err != nil {
		return fmt.Errorf("find daemon binary: %w", err)
	}

	proc := exec.Command(binary)
	proc.Dir = dir
	proc.Env = append(os.Environ(), "CODELAB_HOME="+dir)
	configureDaemonProcess(proc)

	if err := proc.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	fmt.Fprint(out, "Starting daemon...")
	for i := 0; i < 30; i++ {
		time.Sleep(100 * time.Millisecond)
		if isRunning(addr) {
			fmt.Fprintln(out, " ✓")
			fmt.Fprintf(out, "Open %s in your browser\n", addr)
			return nil
		}
		fmt.Fprint(out, ".")
	}

	fmt.Fprintln(out, " ✗")
	return fmt.Errorf("daemon failed to start (check logs with 'codelab daemon logs')")
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	addr, err := daemonAddr()
	if err != nil {
		return err
	}
	if !isRunning(addr) {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	dir, err := codelabDir()
	if err != nil {
		return err
	}
	pid, err := readPID(filepath.Join(dir, pidFile))
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process: %w", err)
	}

	fmt.Fprint(out, "Stopping daemon...")
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("send signal: %w", err)
	}

	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if !isRunning(addr) {
			fmt.Fprintln(out, " ✓")
			return nil
		}
		fmt.Fprint(out, ".")
	}

	fmt.Fprintln(out, " ✗")
	return fmt.Errorf("daemon did not stop gracefully")
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse PID: %w", err)
	}
	return pid, nil
}

// daemonStatus mirrors the /v1/status response
type daemonStatus struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    int64  `json:"uptime_seconds"`
	Exercises int    `json:"exercises"`
	Sessions  int    `json:"sessions"`
	Watchers  int    `json:"watchers"`
	Evaluator string `json:"evaluator"`
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	addr, err := daemonAddr()
	if err != nil {
		return err
	}
	if !isRunning(addr) {
		fmt.Fprintln(out, "Status: stopped")
		return nil
	}

	resp, err := httpClient.Get(addr + "/v1/status")
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}
	defer resp.Body.Close()

	var status daemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("parse status: %w", err)
	}

	printStatus(out, addr, status)
	return nil
}

func printStatus(w io.Writer, addr string, s daemonStatus) {
	fmt.Fprintf(w, "Status:    %s\n", s.Status)
	fmt.Fprintf(w, "Version:   %s\n", s.Version)
	fmt.Fprintf(w, "Uptime:    %s\n", time.Duration(s.Uptime)*time.Second)
	fmt.Fprintf(w, "Exercises: %d\n", s.Exercises)
	fmt.Fprintf(w, "Sessions:  %d (%d live)\n", s.Sessions, s.Watchers)
	fmt.Fprintf(w, "Evaluator: %s\n", s.Evaluator)
	fmt.Fprintf(w, "Address:   %s\n", addr)
}

func runDaemonLogs(cmd *cobra.Command, args []string) error {
	dir, err := codelabDir()
	if err != nil {
		return err
	}

	logPath := filepath.Join(dir, "logs", "codelabd.log")
	file, err := os.Open(logPath)
	if os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No log file found. Start the daemon first.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	return tailLines(file, cmd.OutOrStdout(), 4096)
}

// tailLines copies roughly the last window bytes of f, starting at a line boundary
func tailLines(f *os.File, w io.Writer, window int64) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	offset := info.Size() - window
	if offset < 0 {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	reader := bufio.NewReader(f)
	if offset > 0 {
		_, _ = reader.ReadString('\n')
	}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		fmt.Fprintln(w, scanner.Text())
	}
	return scanner.Err()
}

// isRunning checks if the daemon is running by calling the health endpoint
func isRunning(addr string) bool {
	resp, err := httpClient.Get(addr + "/v1/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// findDaemonBinary locates the codelabd binary
func findDaemonBinary() (string, error) {
	if path, err := exec.LookPath("codelabd"); err == nil {
		return path, nil
	}

	if self, err := os.Executable(); err == nil {
		path := filepath.Join(filepath.Dir(self), "codelabd")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	for _, path := range []string{"/usr/local/bin/codelabd", "./codelabd"} {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("codelabd binary not found (build with 'go build ./cmd/codelabd')")
}
