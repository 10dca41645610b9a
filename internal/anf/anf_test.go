package anf_test

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"loom/internal/anf"
	"loom/internal/front"
	"loom/internal/prim"
	"loom/internal/surface"
	"loom/internal/testkit"
)

func sortedUses(m *anf.Module, n anf.NodeID) []anf.Use {
	us := m.Uses(n)
	sort.Slice(us, func(i, j int) bool {
		if us[i].Node != us[j].Node {
			return us[i].Node < us[j].Node
		}
		return us[i].Index < us[j].Index
	})
	return us
}

func TestConstructionRegistersUses(t *testing.T) {
	m := anf.NewModule()
	g := m.NewGraph("f")
	x := m.NewParameter(g, "x")
	add := m.NewConstant(prim.Add)
	n := m.NewApply(g, add, x, x)

	require.Equal(t, []anf.Use{{Node: n, Index: 1}, {Node: n, Index: 2}}, sortedUses(m, x))
	require.Equal(t, []anf.Use{{Node: n, Index: 0}}, sortedUses(m, add))
	require.Empty(t, m.Uses(n))
	require.Equal(t, 3, m.NumInputs(n))
	require.Equal(t, x, m.Input(n, 2))
	require.Equal(t, anf.NoNodeID, m.Input(n, 3))
}

func TestMutationsKeepEdgesSymmetric(t *testing.T) {
	m := anf.NewModule()
	g := m.NewGraph("f")
	a := m.NewParameter(g, "a")
	b := m.NewParameter(g, "b")
	c := m.NewParameter(g, "c")
	n := m.NewApply(g, m.NewConstant(prim.Add), a, b)

	require.NoError(t, m.InsertInput(n, 1, c)) // add(c, a, b)
	require.NoError(t, m.DeleteInput(n, 0))    // c(a, b)
	require.NoError(t, m.SetInput(n, 2, a))    // c(a, a)
	require.NoError(t, m.AppendInput(n, a))    // c(a, a, a)
	require.NoError(t, m.InsertInput(n, 0, b)) // b(c, a, a, a)

	require.Equal(t, []anf.NodeID{b, c, a, a, a}, m.Inputs(n))
	require.Equal(t, []anf.Use{{Node: n, Index: 2}, {Node: n, Index: 3}, {Node: n, Index: 4}}, sortedUses(m, a))
	require.Equal(t, []anf.Use{{Node: n, Index: 0}}, sortedUses(m, b))
	require.Equal(t, []anf.Use{{Node: n, Index: 1}}, sortedUses(m, c))

	m.SetReturn(g, n)
	require.NoError(t, m.Validate())
	require.NoError(t, testkit.CheckEdgeSymmetry(m))
}

func TestDeleteShiftsRepeatedInput(t *testing.T) {
	m := anf.NewModule()
	g := m.NewGraph("f")
	x := m.NewParameter(g, "x")
	n := m.NewApply(g, m.NewConstant(prim.Add), x, x)

	require.NoError(t, m.DeleteInput(n, 1))
	require.Equal(t, []anf.Use{{Node: n, Index: 1}}, sortedUses(m, x))
	require.NoError(t, testkit.CheckEdgeSymmetry(m))
}

func TestSetInputsDropsOldUses(t *testing.T) {
	m := anf.NewModule()
	g := m.NewGraph("f")
	x := m.NewParameter(g, "x")
	y := m.NewParameter(g, "y")
	fn := m.NewConstant(prim.Mul)
	n := m.NewApply(g, fn, x, x)

	require.NoError(t, m.SetInputs(n, fn, y))
	require.Empty(t, m.Uses(x))
	require.Equal(t, []anf.Use{{Node: n, Index: 1}}, sortedUses(m, y))
	require.NoError(t, testkit.CheckEdgeSymmetry(m))
}

func TestOutOfRangeAndKindErrors(t *testing.T) {
	m := anf.NewModule()
	g := m.NewGraph("f")
	x := m.NewParameter(g, "x")
	n := m.NewApply(g, m.NewConstant(prim.USub), x)

	require.Error(t, m.SetInput(n, 2, x))
	require.Error(t, m.SetInput(n, -1, x))
	require.Error(t, m.InsertInput(n, 3, x))
	require.Error(t, m.DeleteInput(n, 2))
	require.Error(t, m.SetInput(x, 0, n))
	require.Error(t, m.AppendInput(anf.NoNodeID, x))

	// failed calls leave the edges untouched
	require.Equal(t, []anf.NodeID{m.Input(n, 0), x}, m.Inputs(n))
	require.NoError(t, testkit.CheckEdgeSymmetry(m))
}

func TestValidateReportsMissingReturn(t *testing.T) {
	m := anf.NewModule()
	m.NewGraph("f")
	g := m.NewGraph("g")
	m.SetReturn(g, m.NewConstant(int64(1)))

	err := m.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "(f): return is not set")
	require.NotContains(t, err.Error(), "(g)")
}

func TestRendering(t *testing.T) {
	m := anf.NewModule()
	g := m.NewGraph("f")
	x := m.NewParameter(g, "x")
	anon := m.NewParameter(g, "")
	y := m.NewApply(g, m.NewConstant(prim.Add), x, m.NewConstant(int64(1)))
	m.SetName(y, "y")

	require.Equal(t, "f(x, arg1) → ?", m.GraphString(g))
	require.Equal(t, "arg1", m.NodeString(anon))
	require.Equal(t, "y = add(x, 1)", m.NodeString(y))

	z := m.NewApply(g, m.NewConstant(prim.Mul), y, anon)
	require.Equal(t, "mul(y, arg1)", m.NodeString(z))
	m.SetReturn(g, z)
	require.Equal(t, "f(x, arg1) → mul(y, arg1)", m.GraphString(g))
	require.Equal(t, `"s"`, m.NodeString(m.NewConstant("s")))
	require.Equal(t, "None", m.NodeString(m.NewConstant(nil)))
	require.Equal(t, "print", m.NodeString(m.NewConstant(anf.GlobalRef{Name: "print"})))
	require.Equal(t, "f", m.NodeString(m.NewConstant(g)))

	var buf bytes.Buffer
	require.NoError(t, m.Dump(&buf))
	require.Equal(t, "f(x, arg1) → mul(y, arg1)\n  y = add(x, 1)\n  mul(y, arg1)\n  return(mul(y, arg1))\n", buf.String())
}

func TestCopyDuplicatesInputsWithoutDebug(t *testing.T) {
	m := anf.NewModule()
	g := m.NewGraph("f")
	x := m.NewParameter(g, "x")
	n := m.NewApply(g, m.NewConstant(prim.Add), x, x)
	m.SetName(n, "n")

	cp := m.Copy(n)
	require.NotEqual(t, n, cp)
	require.Equal(t, m.Inputs(n), m.Inputs(cp))
	require.Empty(t, m.Node(cp).Debug.Name)
	require.Len(t, m.Uses(x), 4)
	require.NoError(t, testkit.CheckEdgeSymmetry(m))

	k := m.NewConstant(int64(7))
	kc := m.Copy(k)
	require.Equal(t, int64(7), m.Node(kc).Value)
	require.Equal(t, anf.KindConstant, m.Node(kc).Kind)
}

func TestConvertLoweredLoop(t *testing.T) {
	res, err := front.ParseSource(context.Background(), "loop.py", 1, []byte(`def f(n):
    i = 0
    s = 0
    while i < n:
        s = s + i
        i = i + 1
    return s
`), front.Options{Namespace: "t"})
	require.NoError(t, err)

	m, err := anf.Convert(res.Globals)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	require.NoError(t, testkit.CheckEdgeSymmetry(m))

	f, ok := m.Global("f")
	require.True(t, ok)
	require.Equal(t, "f(n) → s#4", m.GraphString(f))

	loop, ok := m.Global("#while")
	require.True(t, ok)
	require.Equal(t, "#while(i#2, n#1, s#2) → if(lt(i#2, n#1), #while/then, #while/else)()", m.GraphString(loop))

	// the recursive call refers back to the helper graph itself
	var recursive bool
	for _, id := range m.Graphs() {
		if m.Graph(id).Debug.Name != "#while/then" {
			continue
		}
		for _, n := range m.Schedule(id) {
			callee := m.Node(m.Input(n, 0))
			if callee.Kind == anf.KindConstant && callee.Value == loop {
				recursive = true
			}
		}
	}
	require.True(t, recursive)

	var buf bytes.Buffer
	require.NoError(t, m.Dump(&buf))
	require.True(t, strings.Contains(buf.String(), "#tmp = #while(i, n, s)"), buf.String())
}

func TestConvertUnknownGlobalBecomesReference(t *testing.T) {
	res, err := front.ParseSource(context.Background(), "ext.py", 1, []byte(`def f(x):
    return helper(x)
`), front.Options{Namespace: "t"})
	require.NoError(t, err)

	m, err := anf.Convert(res.Globals)
	require.NoError(t, err)
	f, _ := m.Global("f")
	require.Equal(t, "f(x) → helper(x)", m.GraphString(f))
	require.NoError(t, m.Validate())
}

func TestConvertLetRecLambdas(t *testing.T) {
	res, err := front.ParseSource(context.Background(), "rec.py", 1, []byte(`def f(n):
    def g(k):
        if k:
            return g(k - 1)
        else:
            return 0
    return g(n)
`), front.Options{Namespace: "t"})
	require.NoError(t, err)

	m, err := anf.Convert(res.Globals)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	f, _ := m.Global("f")
	require.Equal(t, "f(n) → g(n)", m.GraphString(f))
}

func TestConvertIgnoresNamespaceText(t *testing.T) {
	src := []byte("def f(x):\n    y = x + 1\n    return f(y)\n")
	for _, ns := range []string{"t", surface.NamespaceGlobal, surface.NamespaceBuiltin} {
		res, err := front.ParseSource(context.Background(), "ns.py", 1, src, front.Options{Namespace: ns})
		require.NoError(t, err, ns)
		require.NoError(t, testkit.CheckClosedDefinitions(res.Globals), ns)
		require.Equal(t, []string{"f"}, res.GlobalsAccessed, ns)

		m, err := anf.Convert(res.Globals)
		require.NoError(t, err, ns)
		require.NoError(t, m.Validate(), ns)
		require.NoError(t, testkit.CheckEdgeSymmetry(m), ns)

		f, ok := m.Global("f")
		require.True(t, ok, ns)
		require.Equal(t, "f(x) → f(y)", m.GraphString(f), ns)
		params := m.Graph(f).Params
		require.Len(t, params, 1, ns)
		require.Len(t, m.Uses(params[0]), 1, ns)
	}
}
