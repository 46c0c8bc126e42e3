package ops

import (
	"fmt"

	"jitscript/internal/types"
)

// defaultLibrary is the operator set every registry starts from.
var defaultLibrary = []string{
	"aten::relu(Tensor self) -> Tensor",
	"aten::sigmoid(Tensor self) -> Tensor",
	"aten::tanh(Tensor self) -> Tensor",
	"aten::neg(Tensor self) -> Tensor",
	"aten::neg.int(int a) -> int",
	"aten::zeros_like(Tensor self) -> Tensor",
	"aten::add(Tensor self, Tensor other, *, float alpha=1) -> Tensor",
	"aten::add.int(int a, int b) -> int",
	"aten::add.float(float a, float b) -> float",
	"aten::sub(Tensor self, Tensor other, *, float alpha=1) -> Tensor",
	"aten::sub.int(int a, int b) -> int",
	"aten::mul(Tensor self, Tensor other) -> Tensor",
	"aten::mul.int(int a, int b) -> int",
	"aten::matmul(Tensor self, Tensor other) -> Tensor",
	"aten::linear(Tensor input, Tensor weight, Optional[Tensor] bias=None) -> Tensor",
	"aten::dropout(Tensor input, float p=0.5, bool train=True) -> Tensor",
	"aten::softmax(Tensor self, int dim) -> Tensor",
	"aten::max(Tensor self) -> Tensor",
	"aten::max.dim(Tensor self, int dim, bool keepdim=False) -> (Tensor, Tensor)",
	"aten::min(Tensor self) -> Tensor",
	"aten::min.dim(Tensor self, int dim, bool keepdim=False) -> (Tensor, Tensor)",
	"aten::sort(Tensor self, int dim=-1, bool descending=False) -> (Tensor, Tensor)",
	"aten::chunk(Tensor self, int chunks, int dim=0) -> Tensor...",
	"aten::unbind(Tensor self, int dim=0) -> Tensor...",
	"aten::size(Tensor self, int dim) -> int",
	"aten::dim(Tensor self) -> int",
	"aten::eq.int(int a, int b) -> bool",
	"aten::lt.int(int a, int b) -> bool",
	"aten::wait(Future[Tensor] self) -> Tensor",
	"aten::wait.int(Future[int] self) -> int",
	"aten::wait.pair(Future[Tuple[Tensor, Tensor]] self) -> Tuple[Tensor, Tensor]",
	"prim::Int(Tensor a) -> int",
	"prim::Int.float(float a) -> int",
	"prim::Int.bool(bool a) -> int",
	"prim::Int.str(str a) -> int",
	"prim::Float(Tensor a) -> float",
	"prim::Float.int(int a) -> float",
	"prim::Float.str(str a) -> float",
	"prim::Bool(Tensor a) -> bool",
	"prim::Bool.int(int a) -> bool",
	"prim::Bool.float(float a) -> bool",
	"prim::Str(Any a) -> str",
}

// defaultAliases: torch::x resolves to aten::x.
var defaultAliases = map[string]string{
	"torch": "aten",
}

// NewDefaultRegistry returns an unfrozen registry holding the default library.
func NewDefaultRegistry(in *types.Interner) (*Registry, error) {
	r := NewRegistry(in)
	if err := r.LoadSignatures(defaultLibrary); err != nil {
		return nil, err
	}
	for from, to := range defaultAliases {
		if err := r.Alias(from, to); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadSignatures registers every signature in order.
func (r *Registry) LoadSignatures(sigs []string) error {
	for _, sig := range sigs {
		if err := r.RegisterSignature(sig); err != nil {
			return fmt.Errorf("register %q: %w", sig, err)
		}
	}
	return nil
}
