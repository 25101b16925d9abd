package lifecycle

import (
	"augmentloop/internal/global"
	"augmentloop/internal/logctx"
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"syscall"
	"time"
)

// preUpdate spawns a replacement process carrying the same executable and
// arguments and waits for it to signal readiness over a pipe, without
// tearing down this process. A failed handoff leaves the caller free to
// keep serving traffic under the original process; only a nil error means
// the child is up and it is safe to proceed to Shutdown.
func preUpdate(ctx context.Context) (childProc *exec.Cmd, err error) {
	// Readiness Pipe - Child -> Parent notification (signals when to start parent shutdown)
	readyR, readyW, err := os.Pipe()
	if err != nil {
		err = fmt.Errorf("failed to create readiness pipe for new process: %v", err)
		return
	}
	defer readyR.Close()
	defer readyW.Close()

	// Aliveness Pipe - Parent -> Child (signals when to tell systemd that child is new main process)
	// Never close write end, this needs to signal when this process is actually gone. Let OS handle that signal (by cleaning fds)
	parentAliveR, parentAliveW, err := os.Pipe()
	if err != nil {
		err = fmt.Errorf("failed to create readiness pipe for new process: %v", err)
		return
	}
	defer parentAliveR.Close()

	// Copy ourselves
	exePath, err := os.Executable()
	if err != nil {
		err = fmt.Errorf("failed to get executable path: %v", err)
		parentAliveW.Close()
		return
	}
	args := os.Args
	workingDir, err := os.Getwd()
	if err != nil {
		err = fmt.Errorf("failed to get current working directory: %v", err)
		parentAliveW.Close()
		return
	}

	// New executable (the child)
	cmd := exec.Command(exePath, args[1:]...)
	cmd.Dir = workingDir
	cmd.Stdin = nil
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// New environment for child
	const fdStartingIndex int = 3
	cmd.ExtraFiles = []*os.File{readyW, parentAliveR}
	readyFDNum := fdStartingIndex + slices.Index(cmd.ExtraFiles, readyW)
	parentAliveFDNum := fdStartingIndex + slices.Index(cmd.ExtraFiles, parentAliveR)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=%d", global.EnvNameReadinessFD, readyFDNum),
		fmt.Sprintf("%s=%d", global.EnvNameAlivenessFD, parentAliveFDNum),
	)

	err = cmd.Start()
	if err != nil {
		err = fmt.Errorf("failed to start new process: %v", err)
		parentAliveW.Close()
		return
	}
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"Started replacement child process with PID %d\n", cmd.Process.Pid)

	// Wait for child to successfully start
	err = readinessReceiver(readyR)
	if err != nil {
		killErr := cmd.Process.Signal(syscall.Signal(0))
		if killErr == nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Found child PID %d still alive despite not sending readiness signal\n", cmd.Process.Pid)

			lerr := cmd.Process.Signal(syscall.SIGTERM)
			if lerr != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
					"Failed to send graceful shutdown signal to child PID %d: %v\n", cmd.Process.Pid, lerr)
			}

			done := make(chan error, 1)
			go func() {
				done <- cmd.Wait()
			}()

			select {
			case <-time.After(5 * time.Second):
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
					"Child PID %d did not exit gracefully, forcing shutdown\n", cmd.Process.Pid)

				lerr := cmd.Process.Kill()
				if lerr != nil {
					logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
						"Failed to force shutdown for child PID %d: %v\n", cmd.Process.Pid, lerr)
				}
				<-done
			case <-done:
				logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
					"Child PID %d exited gracefully\n", cmd.Process.Pid)
			}
		}

		parentAliveW.Close()
		return
	}

	// Keep open for the life of this process so the child can detect parent
	// liveness via its read end closing when this process exits.
	_ = parentAliveW
	childProc = cmd
	return
}

// updateAndExit hands systemd's MAINPID off to the already-started
// replacement and exits this process. daemonManager.Shutdown has already
// been called by the time this runs; there is nothing left to gracefully
// tear down here beyond notifying systemd and leaving.
func updateAndExit(ctx context.Context, daemonManager DaemonLike, childProc *exec.Cmd) {
	if childProc == nil || childProc.Process == nil {
		os.Exit(0)
	}

	err := notify(ctx, fmt.Sprintf("MAINPID=%d", childProc.Process.Pid))
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"systemd MAINPID handoff notify failed: %v\n", err)
	}

	os.Exit(0)
}
