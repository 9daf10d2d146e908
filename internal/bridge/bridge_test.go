package bridge

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/ani/internal/config"
	"github.com/tormodhaugland/ani/internal/host/hosttest"
	"github.com/tormodhaugland/ani/internal/logging"
	"github.com/tormodhaugland/ani/internal/message"
	"github.com/tormodhaugland/ani/internal/pyenv"
)

// scriptedRunner answers probes and installs from fixed sets.
type scriptedRunner struct {
	mu          sync.Mutex
	missing     map[string]bool // probe fails for these modules
	installFail map[string]bool // install fails for these libs
	probes      []string
	installs    []string
}

func (r *scriptedRunner) Run(_ context.Context, _ string, args ...string) (*pyenv.RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := args[len(args)-1]
	if args[0] == "-c" {
		r.probes = append(r.probes, name)
		if r.missing[name] {
			return &pyenv.RunResult{ExitCode: 1}, &pyenv.ProcessError{Command: "probe", ExitCode: 1}
		}
		return &pyenv.RunResult{}, nil
	}

	r.installs = append(r.installs, name)
	if r.installFail[name] {
		return &pyenv.RunResult{ExitCode: 1}, &pyenv.ProcessError{Command: "install", ExitCode: 1}
	}
	return &pyenv.RunResult{}, nil
}

func (r *scriptedRunner) Installs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.installs...)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Progress.Interval = "2ms"
	cfg.Progress.Hold = "1ms"
	cfg.Install.Delay = "0s"
	return cfg
}

func newBridge(h *hosttest.Fake, r pyenv.Runner) *Bridge {
	return New(h, h, testConfig(), WithRunner(r), WithLogger(logging.Discard()))
}

func dispatch(t *testing.T, b *Bridge, raw string) {
	t.Helper()
	b.Dispatch(context.Background(), []byte(raw))
	b.Wait()
}

func TestDispatch_InfoAndError(t *testing.T) {
	h := &hosttest.Fake{}
	b := newBridge(h, &scriptedRunner{})

	dispatch(t, b, `{"type":"onInfo","value":"saved"}`)
	dispatch(t, b, `{"type":"onError","value":"broken"}`)
	dispatch(t, b, `{"type":"onInfo","value":""}`)
	dispatch(t, b, `{"type":"onError"}`)

	assert.Equal(t, []string{"saved"}, h.Infos())
	assert.Equal(t, []string{"broken"}, h.Errors())
}

func TestDispatch_UnrecognizedHasNoEffect(t *testing.T) {
	h := &hosttest.Fake{Root: t.TempDir(), HasEditor: true}
	r := &scriptedRunner{}
	b := newBridge(h, r)

	dispatch(t, b, `{"type":"selfDestruct","value":"now"}`)
	dispatch(t, b, `{"value":"no type"}`)
	dispatch(t, b, `not json at all`)
	dispatch(t, b, `{"type":"new-todo","value":"inbound"}`)

	assert.Empty(t, h.Infos())
	assert.Empty(t, h.Errors())
	assert.Empty(t, h.Inserts())
	assert.Empty(t, h.Opened())
	assert.Empty(t, h.Prompts())
	assert.Empty(t, h.Indicators())
	assert.Empty(t, r.probes)
}

func TestDispatch_WrongPayloadShape(t *testing.T) {
	h := &hosttest.Fake{Root: t.TempDir(), HasEditor: true}
	r := &scriptedRunner{}
	b := newBridge(h, r)

	dispatch(t, b, `{"type":"insertContent","value":42}`)
	dispatch(t, b, `{"type":"insertFile","path":["a"],"content":"x"}`)
	dispatch(t, b, `{"type":"installPythonLibs","libs":"numpy"}`)
	dispatch(t, b, `{"type":"onInfo","value":7}`)

	assert.Equal(t, []string{
		"No content to insert.",
		"Missing file path or content.",
		"No libraries specified.",
	}, h.Errors())
	assert.Empty(t, h.Infos())
	assert.Empty(t, h.Inserts())
	assert.Empty(t, h.Opened())
	assert.Empty(t, r.probes)
}

func TestInsertContent(t *testing.T) {
	h := &hosttest.Fake{HasEditor: true}
	b := newBridge(h, &scriptedRunner{})

	dispatch(t, b, `{"type":"insertContent","value":"fmt.Println(1)"}`)
	assert.Equal(t, []string{"fmt.Println(1)"}, h.Inserts())
	assert.Empty(t, h.Errors())
}

func TestInsertContent_EmptyValue(t *testing.T) {
	h := &hosttest.Fake{HasEditor: true}
	b := newBridge(h, &scriptedRunner{})

	dispatch(t, b, `{"type":"insertContent","value":""}`)
	assert.Empty(t, h.Inserts())
	assert.Equal(t, []string{msgNoContent}, h.Errors())
}

func TestInsertContent_NoActiveEditor(t *testing.T) {
	h := &hosttest.Fake{}
	b := newBridge(h, &scriptedRunner{})

	dispatch(t, b, `{"type":"insertContent","value":"x"}`)
	assert.Equal(t, []string{msgNoActiveEditor}, h.Errors())
}

func TestInsertFile_CreatesAndOverwrites(t *testing.T) {
	root := t.TempDir()
	h := &hosttest.Fake{Root: root}
	b := newBridge(h, &scriptedRunner{})

	dispatch(t, b, `{"type":"insertFile","path":"a/b/c.txt","content":"hello"}`)

	target := filepath.Join(root, "a", "b", "c.txt")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, []string{target}, h.Opened())
	assert.Equal(t, []string{"File created: a/b/c.txt"}, h.Infos())

	dispatch(t, b, `{"type":"insertFile","path":"a/b/c.txt","content":"world"}`)
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "world", string(data))
	assert.Empty(t, h.Errors())
}

func TestInsertFile_Validation(t *testing.T) {
	h := &hosttest.Fake{Root: t.TempDir()}
	b := newBridge(h, &scriptedRunner{})

	dispatch(t, b, `{"type":"insertFile","path":"a.txt"}`)
	dispatch(t, b, `{"type":"insertFile","content":"x"}`)

	assert.Equal(t, []string{msgMissingPath, msgMissingPath}, h.Errors())
	assert.Empty(t, h.Opened())
}

func TestInsertFile_NoWorkspace(t *testing.T) {
	h := &hosttest.Fake{}
	b := newBridge(h, &scriptedRunner{})

	dispatch(t, b, `{"type":"insertFile","path":"a.txt","content":"x"}`)
	assert.Equal(t, []string{msgNoWorkspace}, h.Errors())
}

func TestInsertFile_WriteFailureIsGeneric(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), []byte("file"), 0644))
	h := &hosttest.Fake{Root: root}
	b := newBridge(h, &scriptedRunner{})

	dispatch(t, b, `{"type":"insertFile","path":"a/b.txt","content":"x"}`)
	assert.Equal(t, []string{msgCreateFailed}, h.Errors())
	assert.Empty(t, h.Opened())
}

func TestInstallPythonLibs_NoLibs(t *testing.T) {
	h := &hosttest.Fake{}
	r := &scriptedRunner{}
	b := newBridge(h, r)

	dispatch(t, b, `{"type":"installPythonLibs","libs":[]}`)
	dispatch(t, b, `{"type":"installPythonLibs"}`)
	dispatch(t, b, `{"type":"installPythonLibs","libs":["  "]}`)

	assert.Equal(t, []string{msgNoLibs, msgNoLibs, msgNoLibs}, h.Errors())
	assert.Empty(t, r.probes)
}

func TestInstallPythonLibs_AllInstalledSkipsPrompt(t *testing.T) {
	h := &hosttest.Fake{Answer: "Yes"}
	r := &scriptedRunner{}
	b := newBridge(h, r)

	dispatch(t, b, `{"type":"installPythonLibs","libs":["numpy","requests"]}`)

	assert.Equal(t, []string{"numpy", "requests"}, r.probes)
	assert.Empty(t, h.Prompts())
	assert.Empty(t, r.Installs())
	assert.Equal(t, []string{msgAllInstalled}, h.Infos())
}

func TestInstallPythonLibs_DeclineInstallsNothing(t *testing.T) {
	h := &hosttest.Fake{Answer: "No"}
	r := &scriptedRunner{missing: map[string]bool{"pandas": true}}
	b := newBridge(h, r)

	dispatch(t, b, `{"type":"installPythonLibs","libs":["numpy","pandas"]}`)

	require.Len(t, h.Prompts(), 1)
	assert.Contains(t, h.Prompts()[0], "pandas")
	assert.NotContains(t, h.Prompts()[0], "numpy")
	assert.Empty(t, r.Installs())
	assert.Equal(t, []string{msgInstallCancelled}, h.Infos())
}

func TestInstallPythonLibs_DismissedPromptCancels(t *testing.T) {
	h := &hosttest.Fake{Answer: ""}
	r := &scriptedRunner{missing: map[string]bool{"pandas": true}}
	b := newBridge(h, r)

	dispatch(t, b, `{"type":"installPythonLibs","libs":["pandas"]}`)
	assert.Empty(t, r.Installs())
	assert.Equal(t, []string{msgInstallCancelled}, h.Infos())
}

func TestInstallPythonLibs_ContinuesOnError(t *testing.T) {
	h := &hosttest.Fake{Answer: "Yes"}
	r := &scriptedRunner{
		missing:     map[string]bool{"pandas": true, "torch": true, "flask": true},
		installFail: map[string]bool{"torch": true},
	}
	b := newBridge(h, r)

	dispatch(t, b, `{"type":"installPythonLibs","libs":["pandas","numpy","torch","flask"]}`)

	assert.Equal(t, []string{"pandas", "torch", "flask"}, r.Installs())
	assert.Equal(t, []string{"Failed to install torch."}, h.Errors())
	assert.Equal(t, []string{"Installed 2 of 3 libraries."}, h.Infos())

	inds := h.Indicators()
	require.Len(t, inds, 1)
	assert.Equal(t, installTitle, inds[0].Title)
	assert.True(t, inds[0].Closed())

	percents := inds[0].Percents()
	assert.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
}

func TestProgressMessages(t *testing.T) {
	h := &hosttest.Fake{}
	b := newBridge(h, &scriptedRunner{})

	dispatch(t, b, `{"type":"startProgress","title":"Thinking"}`)
	require.Eventually(t, func() bool { return b.Progress().Percent() >= 20 }, time.Second, time.Millisecond)

	inds := h.Indicators()
	require.Len(t, inds, 1)
	assert.Equal(t, "Thinking", inds[0].Title)
	assert.NotContains(t, inds[0].Percents(), 100)

	dispatch(t, b, `{"type":"endProgress"}`)
	b.Progress().Wait()

	percents := inds[0].Percents()
	assert.Equal(t, 100, percents[len(percents)-1])
	assert.True(t, inds[0].Closed())
}

func TestCloseAfterEndProgressReachesHundred(t *testing.T) {
	for i := 0; i < 50; i++ {
		h := &hosttest.Fake{}
		b := newBridge(h, &scriptedRunner{})

		dispatch(t, b, `{"type":"startProgress","title":"Thinking"}`)
		dispatch(t, b, `{"type":"endProgress"}`)
		b.Close()

		ind := h.Indicators()[0]
		percents := ind.Percents()
		require.NotEmpty(t, percents, "run %d", i)
		assert.Equal(t, 100, percents[len(percents)-1], "run %d", i)
		assert.True(t, ind.Closed())
	}
}

func TestEndProgressWithoutStart(t *testing.T) {
	h := &hosttest.Fake{}
	b := newBridge(h, &scriptedRunner{})

	dispatch(t, b, `{"type":"endProgress"}`)
	assert.Empty(t, h.Indicators())
	assert.Empty(t, h.Errors())
}

func TestPost(t *testing.T) {
	h := &hosttest.Fake{}
	b := newBridge(h, &scriptedRunner{})

	require.NoError(t, b.Post(context.Background(), message.NewTodo{Value: "ship it"}))
	assert.Equal(t, []message.Message{message.NewTodo{Value: "ship it"}}, h.Posted())
}

func TestClosedBridgeDropsMessages(t *testing.T) {
	h := &hosttest.Fake{HasEditor: true}
	b := newBridge(h, &scriptedRunner{})
	b.Close()

	dispatch(t, b, `{"type":"insertContent","value":"late"}`)
	dispatch(t, b, `{"type":"onInfo","value":"late"}`)
	dispatch(t, b, `{"type":"startProgress"}`)

	assert.Empty(t, h.Inserts())
	assert.Empty(t, h.Infos())
	assert.Empty(t, h.Indicators())
}

func TestCloseRacesDispatch(t *testing.T) {
	for i := 0; i < 50; i++ {
		h := &hosttest.Fake{HasEditor: true}
		b := newBridge(h, &scriptedRunner{})

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 20; j++ {
				b.Dispatch(context.Background(), []byte(`{"type":"insertContent","value":"x"}`))
			}
		}()
		b.Close()
		<-done
		b.Wait()
	}
}

type panickyHost struct {
	*hosttest.Fake
}

func (panickyHost) InsertAtCursor(context.Context, string) error {
	panic("editor exploded")
}

func TestHandlerPanicIsContained(t *testing.T) {
	fake := &hosttest.Fake{HasEditor: true}
	h := panickyHost{Fake: fake}
	b := New(h, fake, testConfig(), WithRunner(&scriptedRunner{}), WithLogger(logging.Discard()))

	b.Dispatch(context.Background(), []byte(`{"type":"insertContent","value":"x"}`))
	b.Wait()

	assert.Equal(t, []string{"Unexpected error."}, fake.Errors())

	// The bridge keeps working afterwards.
	dispatch(t, b, `{"type":"onInfo","value":"still here"}`)
	assert.Equal(t, []string{"still here"}, fake.Infos())
}
