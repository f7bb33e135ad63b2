package dome

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugMode_DisposedNodePanics(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := NewContainer("parent")
	s.Root().AddChild(parent)

	child := NewTile("child", nil, 10, 10)
	child.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild with disposed node, got none")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()

	parent.AddChild(child)
}

func TestDebugMode_TreeDepthWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewScene()
	s.SetLogger(zap.New(core))
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	n := s.Root()
	for i := range debugMaxTreeDepth {
		c := NewContainer(fmt.Sprintf("level-%d", i))
		n.AddChild(c)
		n = c
	}
	assert.Equal(t, 1, logs.FilterMessage("tree depth exceeds threshold").Len())
}

func TestDebugMode_ChildCountWarnsOnSceneLogger(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	global, globalLogs := observer.New(zapcore.WarnLevel)
	defer zap.ReplaceGlobals(zap.New(global))()

	s := NewScene()
	s.SetDebugMode(true)
	s.SetLogger(zap.New(core))
	defer s.SetDebugMode(false)

	parent := NewContainer("wide")
	s.Root().AddChild(parent)
	for i := 0; i <= debugMaxChildCount; i++ {
		parent.AddChild(NewContainer(fmt.Sprintf("c-%d", i)))
	}
	assert.Equal(t, 1, logs.FilterMessage("child count exceeds threshold").Len())
	assert.Zero(t, globalLogs.Len(), "global logger untouched")
}

func TestDebugLogFrame(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewScene()
	s.SetLogger(zap.New(core))
	s.LockScroll()

	s.debugLog(debugStats{commandCount: 3, layerCounts: map[uint8]int{0: 2, 1: 1}})
	assert.Zero(t, logs.Len(), "nothing logged outside debug mode")

	s.SetDebugMode(true)
	defer s.SetDebugMode(false)
	s.debugLog(debugStats{commandCount: 3, layerCounts: map[uint8]int{0: 2, 1: 1}})
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.EqualValues(t, 3, fields["commands"])
	assert.Equal(t, true, fields["scrollLocked"])
}

func TestCountLayers(t *testing.T) {
	cmds := []RenderCommand{{renderLayer: 0}, {renderLayer: 1}, {renderLayer: 0}}
	assert.Equal(t, map[uint8]int{0: 2, 1: 1}, countLayers(cmds))
	assert.Empty(t, countLayers(nil))
}
