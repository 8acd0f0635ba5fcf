package document

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/marksmart/internal/filesys"
)

type fakePicker struct {
	available bool
	open      []filesys.Handle
	save      filesys.Handle
	err       error
	openCalls int
	saveCalls int
	lastSave  filesys.SaveOptions
}

func (p *fakePicker) Available() bool { return p.available }

func (p *fakePicker) ShowOpenFilePicker(context.Context, filesys.OpenOptions) ([]filesys.Handle, error) {
	p.openCalls++
	return p.open, p.err
}

func (p *fakePicker) ShowSaveFilePicker(_ context.Context, opts filesys.SaveOptions) (filesys.Handle, error) {
	p.saveCalls++
	p.lastSave = opts
	return p.save, p.err
}

type fakeSelector struct {
	name  string
	body  string
	ok    bool
	err   error
	calls int
}

func (s *fakeSelector) Select(context.Context, filesys.Accept) (filesys.Selected, bool, error) {
	s.calls++
	if s.err != nil || !s.ok {
		return filesys.Selected{}, false, s.err
	}
	body := s.body
	return filesys.Selected{
		Name: s.name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}, true, nil
}

type gatewayFixture struct {
	fs       afero.Fs
	session  *Session
	picker   *fakePicker
	selector *fakeSelector
	gw       *Gateway
	notices  []string
	confirms int
	answer   bool
}

func newFixture(t *testing.T, content string) *gatewayFixture {
	t.Helper()
	fx := &gatewayFixture{
		fs:       afero.NewMemMapFs(),
		session:  NewSession(content),
		picker:   &fakePicker{},
		selector: &fakeSelector{},
		answer:   true,
	}
	require.NoError(t, fx.fs.MkdirAll("/docs", 0o755))
	fx.gw = &Gateway{
		Session:    fx.session,
		Picker:     fx.picker,
		Selector:   fx.selector,
		Downloader: &filesys.DirDownloader{Fs: fx.fs, Dir: "/downloads"},
		Confirmer: ConfirmFunc(func(context.Context, string) (bool, error) {
			fx.confirms++
			return fx.answer, nil
		}),
		Notifier: NotifyFunc(func(msg string) { fx.notices = append(fx.notices, msg) }),
	}
	return fx
}

func (fx *gatewayFixture) write(t *testing.T, path, body string) filesys.Handle {
	t.Helper()
	require.NoError(t, afero.WriteFile(fx.fs, path, []byte(body), 0o644))
	return filesys.NewHandle(fx.fs, path)
}

func (fx *gatewayFixture) read(t *testing.T, path string) string {
	t.Helper()
	b, err := afero.ReadFile(fx.fs, path)
	require.NoError(t, err)
	return string(b)
}

func TestOpenWithPicker(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "# Welcome")
	h := fx.write(t, "/docs/a.md", "alpha")
	fx.picker.available = true
	fx.picker.open = []filesys.Handle{h}

	out, err := fx.gw.Open(ctx)
	require.NoError(t, err)
	require.Equal(t, Opened, out)
	d := fx.session.Snapshot()
	require.Equal(t, "alpha", d.Content)
	require.Equal(t, "a.md", d.DisplayName)
	require.False(t, d.Dirty)
	require.True(t, h.SameEntry(d.FileRef))
	require.Zero(t, fx.selector.calls)
}

func TestOpenCancelNeverFallsBack(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "# Welcome")
	fx.picker.available = true
	fx.picker.err = filesys.ErrUserCancelled
	before := fx.session.Snapshot()

	out, err := fx.gw.Open(ctx)
	require.NoError(t, err)
	require.Equal(t, Cancelled, out)
	require.Zero(t, fx.selector.calls)
	require.Equal(t, before, fx.session.Snapshot())
	require.Empty(t, fx.notices)
}

func TestOpenFallsBackOnPickerFailure(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "# Welcome")
	fx.picker.available = true
	fx.picker.err = errors.New("security error")
	fx.selector.ok = true
	fx.selector.name = "legacy.md"
	fx.selector.body = "from input"

	out, err := fx.gw.Open(ctx)
	require.NoError(t, err)
	require.Equal(t, Imported, out)
	d := fx.session.Snapshot()
	require.Equal(t, Document{Content: "from input", DisplayName: "legacy.md"}, d)
}

func TestOpenWithoutCapabilityUsesSelector(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "# Welcome")
	fx.selector.ok = true
	fx.selector.name = "x.md"
	fx.selector.body = "x"

	out, err := fx.gw.Open(ctx)
	require.NoError(t, err)
	require.Equal(t, Imported, out)
	require.Zero(t, fx.picker.openCalls)
	require.Equal(t, 1, fx.selector.calls)
}

func TestOpenSelectorDismissedIsNoop(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "# Welcome")
	before := fx.session.Snapshot()

	out, err := fx.gw.Open(ctx)
	require.NoError(t, err)
	require.Equal(t, Cancelled, out)
	require.Equal(t, before, fx.session.Snapshot())
}

func TestOpenClearsPreviousHandleOnImport(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "")
	fx.session.Replace(Document{Content: "bound", DisplayName: "a.md", FileRef: fx.write(t, "/docs/a.md", "bound")})
	fx.selector.ok = true
	fx.selector.name = "b.md"
	fx.selector.body = "b"

	_, err := fx.gw.Open(ctx)
	require.NoError(t, err)
	require.Nil(t, fx.session.FileRef())
}

func TestOpenDirtyRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "# Welcome")
	fx.session.SetContent("unsaved")
	fx.answer = false
	fx.picker.available = true
	before := fx.session.Snapshot()

	out, err := fx.gw.Open(ctx)
	require.NoError(t, err)
	require.Equal(t, Cancelled, out)
	require.Equal(t, 1, fx.confirms)
	require.Zero(t, fx.picker.openCalls)
	require.Zero(t, fx.selector.calls)
	require.Equal(t, before, fx.session.Snapshot())
}

func TestSaveWithoutHandleDownloads(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "# Welcome")
	fx.session.SetContent("# Welcome more")
	require.True(t, fx.session.Dirty())

	out, err := fx.gw.Save(ctx)
	require.NoError(t, err)
	require.Equal(t, Downloaded, out)
	require.Equal(t, "# Welcome more", fx.read(t, "/downloads/Untitled.md"))
	require.False(t, fx.session.Dirty())
	require.Nil(t, fx.session.FileRef())
	require.Equal(t, DefaultName, fx.session.DisplayName())
}

func TestSaveViaHandleTruncates(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "")
	h := fx.write(t, "/docs/a.md", "a considerably longer original body")
	fx.picker.available = true
	fx.picker.open = []filesys.Handle{h}
	_, err := fx.gw.Open(ctx)
	require.NoError(t, err)

	fx.session.SetContent("short")
	out, err := fx.gw.Save(ctx)
	require.NoError(t, err)
	require.Equal(t, Saved, out)
	require.False(t, fx.session.Dirty())
	require.Equal(t, "short", fx.read(t, "/docs/a.md"))

	f, err := h.File(ctx)
	require.NoError(t, err)
	require.Equal(t, "short", f.Text())
	require.Zero(t, fx.picker.saveCalls)
}

func TestSaveAsBindsHandleThenSaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "# Welcome")
	fx.session.SetContent("# Notes")
	fx.picker.available = true
	fx.picker.save = filesys.NewHandle(fx.fs, "/docs/notes.md")

	out, err := fx.gw.SaveAs(ctx)
	require.NoError(t, err)
	require.Equal(t, Saved, out)
	require.Equal(t, DefaultName, fx.picker.lastSave.SuggestedName)
	d := fx.session.Snapshot()
	require.Equal(t, "notes.md", d.DisplayName)
	require.False(t, d.Dirty)
	require.True(t, fx.picker.save.SameEntry(d.FileRef))

	out, err = fx.gw.Save(ctx)
	require.NoError(t, err)
	require.Equal(t, Saved, out)
	require.False(t, fx.session.Dirty())
	require.Equal(t, "# Notes", fx.read(t, "/docs/notes.md"))
	require.Equal(t, 1, fx.picker.saveCalls)
}

func TestSaveAsReplacesPreviousHandle(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "")
	old := fx.write(t, "/docs/old.md", "body")
	fx.session.Replace(Document{Content: "body", DisplayName: "old.md", FileRef: old})
	fx.picker.available = true
	fx.picker.save = filesys.NewHandle(fx.fs, "/docs/new.md")

	_, err := fx.gw.SaveAs(ctx)
	require.NoError(t, err)
	require.False(t, old.SameEntry(fx.session.FileRef()))
	require.Equal(t, "new.md", fx.session.DisplayName())
}

func TestSaveAsCancelled(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "# Welcome")
	fx.session.SetContent("dirty")
	fx.picker.available = true
	fx.picker.err = filesys.ErrUserCancelled
	before := fx.session.Snapshot()

	out, err := fx.gw.SaveAs(ctx)
	require.NoError(t, err)
	require.Equal(t, Cancelled, out)
	require.Equal(t, before, fx.session.Snapshot())
	exists, err := afero.Exists(fx.fs, "/downloads/Untitled.md")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSaveAsPickerFailureDownloads(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "body")
	fx.session.SetContent("changed")
	fx.picker.available = true
	fx.picker.err = errors.New("not allowed")

	out, err := fx.gw.SaveAs(ctx)
	require.NoError(t, err)
	require.Equal(t, Downloaded, out)
	require.Equal(t, "changed", fx.read(t, "/downloads/Untitled.md"))
	require.False(t, fx.session.Dirty())
}

type brokenHandle struct{ filesys.Handle }

func (brokenHandle) CreateWritable(context.Context, filesys.WritableOptions) (filesys.Writable, error) {
	return nil, errors.New("permission denied")
}

func TestSaveHandleFailureReportsAndFallsThrough(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "")
	h := brokenHandle{fx.write(t, "/docs/ro.md", "body")}
	fx.session.Replace(Document{Content: "body", DisplayName: "ro.md", FileRef: h})
	fx.session.SetContent("body2")

	out, err := fx.gw.Save(ctx)
	require.NoError(t, err)
	require.Equal(t, Downloaded, out)
	require.Len(t, fx.notices, 1)
	require.Contains(t, fx.notices[0], "ro.md")
	require.Equal(t, "body2", fx.read(t, "/downloads/ro.md"))
	require.False(t, fx.session.Dirty())
	require.Equal(t, "body", fx.read(t, "/docs/ro.md"))
}

func TestOpenPath(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "# Welcome")
	fx.write(t, "/docs/a.md", "alpha")

	out, err := fx.gw.OpenPath(ctx, fx.fs, "/docs/a.md")
	require.NoError(t, err)
	require.Equal(t, Opened, out)
	require.Equal(t, "alpha", fx.session.Content())
	require.NotNil(t, fx.session.FileRef())

	out, err = fx.gw.OpenPath(ctx, fx.fs, "/docs/fresh.md")
	require.NoError(t, err)
	require.Equal(t, Opened, out)
	require.Equal(t, "", fx.session.Content())
	require.Equal(t, "fresh.md", fx.session.DisplayName())

	fx.session.SetContent("new body")
	_, err = fx.gw.Save(ctx)
	require.NoError(t, err)
	require.Equal(t, "new body", fx.read(t, "/docs/fresh.md"))
}

func TestSaveToRebindsSession(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "draft")
	fx.session.SetContent("edited")

	out, err := fx.gw.SaveTo(ctx, filesys.NewHandle(fx.fs, "/docs/out.md"))
	require.NoError(t, err)
	require.Equal(t, Saved, out)
	require.Equal(t, "edited", fx.read(t, "/docs/out.md"))
	require.False(t, fx.session.Dirty())
	require.Equal(t, "out.md", fx.session.DisplayName())
	require.Zero(t, fx.picker.saveCalls)
}
