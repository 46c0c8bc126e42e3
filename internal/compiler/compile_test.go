package compiler

import (
	"context"
	"strings"
	"sync"
	"testing"

	"jitscript/internal/ast"
	"jitscript/internal/diag"
	"jitscript/internal/ir"
	"jitscript/internal/ops"
	"jitscript/internal/source"
	"jitscript/internal/symbols"
	"jitscript/internal/testkit"
	"jitscript/internal/types"
)

type result struct {
	prog  *Program
	bag   *diag.Bag
	stats Stats
}

func compileBundle(t *testing.T, src string) result {
	t.Helper()
	return compileBundleWith(t, src, nil)
}

func compileBundleWith(t *testing.T, src string, progress ProgressFunc) result {
	t.Helper()
	fs := source.NewFileSet()
	b, err := ast.DecodeBundle(strings.NewReader(src), fs, "test.yaml")
	if err != nil {
		t.Fatalf("DecodeBundle: %v", err)
	}
	in := types.NewInterner()
	reg, err := ops.NewDefaultRegistry(in)
	if err != nil {
		t.Fatalf("NewDefaultRegistry: %v", err)
	}
	reg.Freeze()
	bag := diag.NewBag(64)
	rep := &diag.BagReporter{Bag: bag}
	prog, ok := Declare(b, in, reg, rep)
	if !ok {
		return result{prog: prog, bag: bag}
	}
	stats, err := prog.Compile(context.Background(), Options{Jobs: 2, Progress: progress}, rep)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, g := range prog.Graphs() {
		if err := testkit.CheckGraph(g); err != nil {
			t.Fatalf("graph invariants: %v\n%s", err, g)
		}
	}
	return result{prog: prog, bag: bag, stats: stats}
}

func (r result) graph(t *testing.T, module, method string) *ir.Graph {
	t.Helper()
	for _, m := range r.prog.Modules {
		if m.Name != module {
			continue
		}
		meth, ok := m.Lookup(method)
		if !ok {
			break
		}
		if g := meth.Graph(); g != nil {
			return g
		}
		t.Fatalf("%s.%s has no graph; diagnostics: %v", module, method, r.bag.Items())
	}
	t.Fatalf("method %s.%s not declared", module, method)
	return nil
}

func (r result) codes() []diag.Code {
	out := make([]diag.Code, 0, r.bag.Len())
	for _, d := range r.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func kinds(b *ir.Block) []string {
	out := make([]string, 0, len(b.Nodes))
	for _, n := range b.Nodes {
		out = append(out, n.Kind.String())
	}
	return out
}

// wrap puts a single method body into a one-class bundle.
func wrap(params, returns, body string) string {
	return `
file: m.py
source: ""
modules:
  - name: Net
    fields:
      - {name: weight, type: Tensor}
    methods:
      - name: helper
        params:
          - {name: x, type: Tensor}
        returns: Tensor
        body:
          - return: {call: torch.relu, args: [x]}
      - name: run
        params: ` + params + `
        returns: ` + returns + `
        body:
` + body
}

func TestMethodCallEmitsCallMethod(t *testing.T) {
	r := compileBundle(t, wrap("[{name: x, type: Tensor}]", "Tensor", `
          - return: {call: self.helper, args: [x]}
`))
	g := r.graph(t, "Net", "run")
	got := kinds(g.Body())
	if len(got) != 1 || got[0] != symbols.PrimCallMethod.String() {
		t.Fatalf("nodes = %v", got)
	}
	n := g.Body().Nodes[0]
	if name, _ := n.Attr("name"); name != "helper" {
		t.Fatalf("name attr = %q", name)
	}
	if len(n.Inputs) != 2 || n.Inputs[0] != g.Inputs()[0] {
		t.Fatalf("CallMethod inputs should be self then x")
	}
}

func TestTorchOpResolvesToAten(t *testing.T) {
	r := compileBundle(t, wrap("[{name: x, type: Tensor}]", "Tensor", `
          - return: {call: torch.relu, args: [x]}
`))
	got := kinds(r.graph(t, "Net", "run").Body())
	if len(got) != 1 || got[0] != "aten::relu" {
		t.Fatalf("nodes = %v", got)
	}
}

func TestIdentityCastIsElided(t *testing.T) {
	r := compileBundle(t, wrap("[{name: y, type: int}]", "int", `
          - return: {call: int, args: [y]}
`))
	g := r.graph(t, "Net", "run")
	if g.NodeCount() != 0 {
		t.Fatalf("int(int) should emit nothing, got %v", kinds(g.Body()))
	}
	if g.Outputs()[0] != g.Inputs()[1] {
		t.Fatalf("output should be the parameter itself")
	}
}

func TestTupleAssignUsesBinderCount(t *testing.T) {
	r := compileBundle(t, wrap("[{name: x, type: Tensor}]", "Tensor", `
          - assign: [a, b, c]
            value: {call: torch.chunk, args: [x, 3]}
          - return: {call: torch.add, args: [a, c]}
`))
	g := r.graph(t, "Net", "run")
	var chunk *ir.Node
	for _, n := range g.Body().Nodes {
		if n.Kind.String() == "aten::chunk" {
			chunk = n
		}
	}
	if chunk == nil || len(chunk.Outputs) != 3 {
		t.Fatalf("expected aten::chunk with 3 outputs, nodes = %v", kinds(g.Body()))
	}
	if chunk.Outputs[0].DebugName() != "a" {
		t.Fatalf("first output should be named after its binder")
	}
}

func TestEmitterDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		body string
		ret  string
		want diag.Code
	}{
		{
			name: "unpack arity",
			ret:  "Tensor",
			body: `
          - assign: [a, b, c]
            value: {call: torch.max, args: [x, 1]}
          - return: a
`,
			want: diag.EmitArityMismatch,
		},
		{
			name: "undefined",
			ret:  "Tensor",
			body: `
          - return: {call: torch.relu, args: [nope]}
`,
			want: diag.EmitUndefinedName,
		},
		{
			name: "no attribute",
			ret:  "Tensor",
			body: `
          - return: self.bias
`,
			want: diag.SugarAttrNotSupported,
		},
		{
			name: "no overload",
			ret:  "Tensor",
			body: `
          - return: {call: torch.relu, args: [x, x]}
`,
			want: diag.SugarNoMatchingOverload,
		},
		{
			name: "missing return",
			ret:  "Tensor",
			body: `
          - expr: {call: print, args: [x]}
`,
			want: diag.EmitReturnMismatch,
		},
		{
			name: "wrong return type",
			ret:  "int",
			body: `
          - return: x
`,
			want: diag.EmitReturnMismatch,
		},
		{
			name: "getattr needs literal",
			ret:  "Tensor",
			body: `
          - return: {call: getattr, args: [self, x]}
`,
			want: diag.EmitGetAttrName,
		},
		{
			name: "annotate mismatch",
			ret:  "Tensor",
			body: `
          - return: {call: annotate, args: [{str: int}, x]}
`,
			want: diag.EmitAnnotationMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := compileBundle(t, wrap("[{name: x, type: Tensor}]", tt.ret, tt.body))
			codes := r.codes()
			if len(codes) != 1 || codes[0] != tt.want {
				t.Fatalf("codes = %v, want [%v]", codes, tt.want)
			}
			if r.stats.Failed != 1 || r.stats.Methods != 2 {
				t.Fatalf("stats = %+v", r.stats)
			}
		})
	}
}

func TestForkWrapsCallInBlock(t *testing.T) {
	r := compileBundle(t, wrap("[{name: x, type: Tensor}]", "Tensor", `
          - assign: [fut]
            value: {call: fork, args: [self.helper, x]}
          - return: {call: torch.wait, args: [fut]}
`))
	g := r.graph(t, "Net", "run")
	body := g.Body()
	if got := kinds(body); len(got) != 2 || got[0] != "prim::fork" || got[1] != "aten::wait" {
		t.Fatalf("nodes = %v", got)
	}
	fork := body.Nodes[0]
	if got := kinds(fork.Block); len(got) != 1 || got[0] != symbols.PrimCallMethod.String() {
		t.Fatalf("fork body = %v", got)
	}
	if len(fork.Block.Inputs) != 1 || len(fork.Block.Outputs) != 1 {
		t.Fatalf("fork block should capture x and yield one value")
	}
	in := g.Types()
	if want := in.Future(in.Builtins().Tensor); fork.Output().Type() != want {
		t.Fatalf("fork type = %s", in.Format(fork.Output().Type()))
	}
}

func TestAnnotateNoneAndIsInstance(t *testing.T) {
	r := compileBundle(t, wrap("[{name: x, type: Tensor}]", "Optional[Tensor]", `
          - assign: [flag]
            value: {call: isinstance, args: [x, Tensor]}
          - expr: {call: print, args: [flag]}
          - return: {call: annotate, args: [{str: "Optional[Tensor]"}, null]}
`))
	g := r.graph(t, "Net", "run")
	in := g.Types()
	out := g.Outputs()[0]
	if out.Type() != in.Optional(in.Builtins().Tensor) {
		t.Fatalf("annotated None has type %s", in.Format(out.Type()))
	}
	c := g.Body().Nodes[0]
	if c.Kind != symbols.PrimConstant {
		t.Fatalf("isinstance should fold to a constant, got %v", c.Kind)
	}
	if v, _ := c.Attr("value"); v != "True" {
		t.Fatalf("isinstance(x, Tensor) = %q", v)
	}
}

func TestDeclareRejectsBadTypes(t *testing.T) {
	src := `
file: m.py
source: ""
modules:
  - name: Net
    fields:
      - {name: w, type: Tensr}
    methods: []
  - name: Net
    methods: []
`
	r := compileBundle(t, src)
	codes := r.codes()
	if len(codes) != 2 || codes[0] != diag.InputUnknownType || codes[1] != diag.InputDuplicateClass {
		t.Fatalf("codes = %v", codes)
	}
}

func TestGraphsSkipFailedMethods(t *testing.T) {
	r := compileBundle(t, wrap("[{name: x, type: Tensor}]", "Tensor", `
          - return: nope
`))
	gs := r.prog.Graphs()
	if len(gs) != 1 || gs[0].Name != "Net.helper" {
		t.Fatalf("graphs = %d", len(gs))
	}
}

func TestProgressEvents(t *testing.T) {
	var mu sync.Mutex
	last := map[string]Status{}
	queued := 0
	progress := func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if ev.Status == StatusQueued {
			queued++
		}
		last[ev.Method] = ev.Status
	}
	compileBundleWith(t, wrap("[{name: x, type: Tensor}]", "Tensor", `
          - return: nope
`), progress)
	if queued != 2 {
		t.Fatalf("queued = %d", queued)
	}
	if last["Net.helper"] != StatusDone || last["Net.run"] != StatusFailed {
		t.Fatalf("final states = %v", last)
	}
}
