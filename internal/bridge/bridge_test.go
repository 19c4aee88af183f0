// Copyright 2025 YUNIKKAI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bridge

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deployerrors "github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/pkg/errors"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell bridge tests require a POSIX shell")
	}
}

func TestBridge_Run(t *testing.T) {
	requireShell(t)

	t.Run("merges stdout and stderr into the sink", func(t *testing.T) {
		b := New("sh", 0)
		var sink bytes.Buffer

		code, err := b.Run(context.Background(),
			GuestCommand{Payload: Step{"sh", "-c", "echo out; echo err 1>&2"}},
			ExecutionContext{}, &sink)

		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Contains(t, sink.String(), "out")
		assert.Contains(t, sink.String(), "err")
	})

	t.Run("propagates working directory", func(t *testing.T) {
		dir := t.TempDir()
		b := New("sh", 0)
		var sink bytes.Buffer

		code, err := b.Run(context.Background(),
			GuestCommand{Payload: Step{"pwd"}},
			ExecutionContext{Workdir: dir}, &sink)

		require.NoError(t, err)
		assert.Equal(t, 0, code)
		// Resolve symlinks: macOS tempdirs live under /private.
		resolved, _ := filepath.EvalSymlinks(dir)
		assert.Contains(t, sink.String(), filepath.Base(resolved))
	})

	t.Run("propagates environment", func(t *testing.T) {
		b := New("sh", 0)
		var sink bytes.Buffer

		code, err := b.Run(context.Background(),
			GuestCommand{Payload: Step{"sh", "-c", "echo mode=$APP_ENV"}},
			ExecutionContext{Env: map[string]string{"APP_ENV": "production"}}, &sink)

		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Contains(t, sink.String(), "mode=production")
	})

	t.Run("activation steps run under a plain POSIX shell", func(t *testing.T) {
		dir := t.TempDir()
		script := filepath.Join(dir, "activate")
		require.NoError(t, os.WriteFile(script, []byte("ACTIVATED=yes\nexport ACTIVATED\n"), 0o644))

		b := New("sh", 0)
		var sink bytes.Buffer

		code, err := b.Run(context.Background(),
			GuestCommand{
				Activation: []Step{{".", script}},
				Payload:    Step{"sh", "-c", "echo activated=$ACTIVATED"},
			},
			ExecutionContext{}, &sink)

		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Contains(t, sink.String(), "activated=yes")
	})

	t.Run("nonzero exit code is not an error", func(t *testing.T) {
		b := New("sh", 0)
		var sink bytes.Buffer

		code, err := b.Run(context.Background(),
			GuestCommand{Payload: Step{"sh", "-c", "exit 3"}},
			ExecutionContext{}, &sink)

		require.NoError(t, err)
		assert.Equal(t, 3, code)
	})

	t.Run("missing bridge mechanism is GuestUnavailable", func(t *testing.T) {
		b := New("definitely-not-a-bridge-binary", 0)
		var sink bytes.Buffer

		_, err := b.Run(context.Background(),
			GuestCommand{Payload: Step{"true"}},
			ExecutionContext{}, &sink)

		var gu *deployerrors.GuestUnavailableError
		require.ErrorAs(t, err, &gu)
		assert.Equal(t, "definitely-not-a-bridge-binary", gu.Bridge)
	})

	t.Run("timeout surfaces as TimeoutError", func(t *testing.T) {
		b := New("sh", 100*time.Millisecond)
		var sink bytes.Buffer

		_, err := b.Run(context.Background(),
			GuestCommand{Payload: Step{"sleep", "5"}},
			ExecutionContext{}, &sink)

		var te *deployerrors.TimeoutError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "bridge", te.Operation)
	})
}
