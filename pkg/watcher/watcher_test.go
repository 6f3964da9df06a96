package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fastOpts keeps the debounce and poll windows short so tests finish quickly.
func fastOpts(extra ...Option) []Option {
	opts := []Option{
		WithDebounce(20 * time.Millisecond),
		WithPollInterval(25 * time.Millisecond),
	}
	return append(opts, extra...)
}

func startWatcher(t *testing.T, primary string, opts ...Option) *Watcher {
	t.Helper()
	w, err := NewWatcher(primary, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitEvent(t *testing.T, w *Watcher, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev, true
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestWatcherReportsWriteToPrimary(t *testing.T) {
	dir := t.TempDir()
	contacts := filepath.Join(dir, "contacts.json")
	writeFile(t, contacts, "v1")

	w := startWatcher(t, contacts)
	time.Sleep(50 * time.Millisecond)

	writeFile(t, contacts, "v2 with different length")

	ev, ok := waitEvent(t, w, time.Second)
	if !ok {
		t.Fatal("no event after writing the primary file")
	}
	if ev.Path != contacts || ev.Removed {
		t.Fatalf("event %+v, want write to %s", ev, contacts)
	}
}

func TestWatcherTracksSiblingFile(t *testing.T) {
	dir := t.TempDir()
	contacts := filepath.Join(dir, "contacts.json")
	emails := filepath.Join(dir, "emails.json")
	writeFile(t, contacts, "contacts")

	w := startWatcher(t, contacts, fastOpts()...)

	got := w.Tracked()
	if len(got) != 1 || got[0] != contacts {
		t.Fatalf("tracked %v before siblings, want just the primary", got)
	}

	ws, err := NewWatcher(contacts, append(fastOpts(), WithSiblings("emails.json"))...)
	if err != nil {
		t.Fatal(err)
	}
	tracked := ws.Tracked()
	if len(tracked) != 2 || tracked[0] != contacts || tracked[1] != emails {
		t.Fatalf("tracked %v, want [%s %s]", tracked, contacts, emails)
	}
	if err := ws.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(ws.Stop)
	time.Sleep(50 * time.Millisecond)

	// The sibling appearing for the first time is a change.
	writeFile(t, emails, "mail")
	ev, ok := waitEvent(t, ws, time.Second)
	if !ok {
		t.Fatal("no event after creating the sibling file")
	}
	if ev.Path != emails || ev.Removed {
		t.Fatalf("event %+v, want creation of %s", ev, emails)
	}
}

func TestWatcherPollingDetectsChange(t *testing.T) {
	dir := t.TempDir()
	contacts := filepath.Join(dir, "contacts.json")
	writeFile(t, contacts, "v1")

	w := startWatcher(t, contacts, append(fastOpts(), WithForcePoll(true))...)
	if !w.IsPolling() {
		t.Fatal("forced watcher is not polling")
	}

	writeFile(t, contacts, "v2 with different length")
	ev, ok := waitEvent(t, w, time.Second)
	if !ok {
		t.Fatal("polling missed the write")
	}
	if ev.Path != contacts {
		t.Fatalf("event for %s, want %s", ev.Path, contacts)
	}
}

func TestWatcherPollingReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	contacts := filepath.Join(dir, "contacts.json")
	writeFile(t, contacts, "v1")

	w := startWatcher(t, contacts, append(fastOpts(), WithForcePoll(true))...)
	if err := os.Remove(contacts); err != nil {
		t.Fatal(err)
	}

	ev, ok := waitEvent(t, w, time.Second)
	if !ok {
		t.Fatal("removal not reported")
	}
	if !ev.Removed || ev.Path != contacts {
		t.Fatalf("event %+v, want removal of %s", ev, contacts)
	}

	// Recreation after a removal is a fresh change.
	writeFile(t, contacts, "reborn")
	ev, ok = waitEvent(t, w, time.Second)
	if !ok {
		t.Fatal("recreation not reported")
	}
	if ev.Removed {
		t.Fatalf("event %+v, want non-removal for the recreated file", ev)
	}
}

func TestWatcherCoalescesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	contacts := filepath.Join(dir, "contacts.json")
	writeFile(t, contacts, "v0")

	var events atomic.Int32
	w, err := NewWatcher(contacts,
		WithDebounce(80*time.Millisecond),
		WithPollInterval(10*time.Millisecond),
		WithForcePoll(true),
		WithOnEvent(func(Event) { events.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)

	for i := 0; i < 6; i++ {
		writeFile(t, contacts, strings.Repeat("x", i+1))
		time.Sleep(15 * time.Millisecond)
	}
	time.Sleep(300 * time.Millisecond)

	if got := events.Load(); got != 1 {
		t.Errorf("%d events for one burst of writes, want 1", got)
	}
}

func TestWatcherEnvForcesPolling(t *testing.T) {
	for _, env := range []string{"CN_FORCE_POLLING", "CN_FORCE_POLL"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, "1")
			dir := t.TempDir()
			contacts := filepath.Join(dir, "contacts.json")
			writeFile(t, contacts, "v1")

			w := startWatcher(t, contacts, fastOpts()...)
			if !w.IsPolling() {
				t.Fatalf("%s did not force polling", env)
			}
		})
	}
}

func TestWatcherRemoteFilesystemForcesPolling(t *testing.T) {
	orig := detectFilesystemTypeFunc
	detectFilesystemTypeFunc = func(string) FilesystemType { return FSTypeNFS }
	t.Cleanup(func() { detectFilesystemTypeFunc = orig })

	dir := t.TempDir()
	contacts := filepath.Join(dir, "contacts.json")
	writeFile(t, contacts, "v1")

	w := startWatcher(t, contacts, fastOpts()...)
	if !w.IsPolling() {
		t.Fatal("remote filesystem did not force polling")
	}
	if got := w.FilesystemType(); got != FSTypeNFS {
		t.Fatalf("filesystem type %v, want %v", got, FSTypeNFS)
	}
}

func TestWatcherStartStopLifecycle(t *testing.T) {
	dir := t.TempDir()
	contacts := filepath.Join(dir, "contacts.json")
	writeFile(t, contacts, "v1")

	w, err := NewWatcher(contacts)
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Fatal("started before Start")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if !w.IsStarted() {
		t.Fatal("not started after Start")
	}
	if err := w.Start(); err != ErrAlreadyStarted {
		t.Fatalf("second Start returned %v, want ErrAlreadyStarted", err)
	}
	w.Stop()
	if w.IsStarted() {
		t.Fatal("still started after Stop")
	}
	w.Stop() // second Stop is a no-op
}

func TestWatcherDirAndPollInterval(t *testing.T) {
	dir := t.TempDir()
	contacts := filepath.Join(dir, "contacts.json")
	writeFile(t, contacts, "v1")

	w, err := NewWatcher(contacts, WithPollInterval(500*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if w.Dir() != dir {
		t.Errorf("Dir = %s, want %s", w.Dir(), dir)
	}
	if w.PollInterval() != 500*time.Millisecond {
		t.Errorf("PollInterval = %v", w.PollInterval())
	}
}

func TestFingerprintDiffers(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := fingerprint{exists: true, mtime: base, size: 10}
	tests := []struct {
		name string
		b    fingerprint
		want bool
	}{
		{"same", fingerprint{exists: true, mtime: base, size: 10}, false},
		{"size", fingerprint{exists: true, mtime: base, size: 11}, true},
		{"mtime", fingerprint{exists: true, mtime: base.Add(time.Second), size: 10}, true},
		{"gone", fingerprint{}, true},
	}
	for _, tt := range tests {
		if got := a.differs(tt.b); got != tt.want {
			t.Errorf("%s: differs = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFilesystemTypeString(t *testing.T) {
	tests := []struct {
		fsType FilesystemType
		want   string
	}{
		{FSTypeUnknown, "unknown"},
		{FSTypeLocal, "local"},
		{FSTypeNFS, "nfs"},
		{FSTypeSMB, "smb"},
		{FSTypeSSHFS, "sshfs"},
		{FSTypeFUSE, "fuse"},
		{FilesystemType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.fsType.String(); got != tt.want {
			t.Errorf("FilesystemType(%d).String() = %q, want %q", tt.fsType, got, tt.want)
		}
	}
}

func TestDetectFilesystemTypeFallsBackToParent(t *testing.T) {
	if got := DetectFilesystemType(""); got != FSTypeUnknown {
		t.Errorf("empty path classified as %v, want unknown", got)
	}
	missing := filepath.Join(t.TempDir(), "not_here.json")
	// An as-yet-unwritten file classifies by its parent directory.
	_ = DetectFilesystemType(missing)
}

func TestEnvBool(t *testing.T) {
	truthy := []string{"1", "true", "TRUE", "yes", "Y", "on"}
	falsy := []string{"", "0", "false", "off", "nope"}
	for _, v := range truthy {
		t.Setenv("CN_TEST_BOOL", v)
		if !envBool("CN_TEST_BOOL") {
			t.Errorf("envBool(%q) = false, want true", v)
		}
	}
	for _, v := range falsy {
		t.Setenv("CN_TEST_BOOL", v)
		if envBool("CN_TEST_BOOL") {
			t.Errorf("envBool(%q) = true, want false", v)
		}
	}
}

func TestDebouncerCoalescesAndCancels(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	if d.Duration() != 30*time.Millisecond {
		t.Fatalf("Duration = %v", d.Duration())
	}
	if NewDebouncer(0).Duration() != DefaultDebounceDuration {
		t.Fatal("zero duration did not fall back to the default")
	}

	fired := make(chan struct{}, 8)
	for i := 0; i < 5; i++ {
		d.Trigger(func() { fired <- struct{}{} })
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("debounced callback never fired")
	}
	select {
	case <-fired:
		t.Fatal("burst of triggers fired more than once")
	case <-time.After(80 * time.Millisecond):
	}

	d.Trigger(func() { fired <- struct{}{} })
	d.Cancel()
	select {
	case <-fired:
		t.Fatal("Cancel did not stop the pending callback")
	case <-time.After(80 * time.Millisecond):
	}
}
