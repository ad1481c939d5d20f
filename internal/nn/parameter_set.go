package nn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// ParameterSet is an ordered name -> parameter collection.
// Iteration order is insertion order.
type ParameterSet[T tensor.Float, B tensor.Backend] struct {
	order  []*Parameter[T, B]
	byName map[string]*Parameter[T, B]
}

// NewParameterSet collects params, rejecting duplicate names.
func NewParameterSet[T tensor.Float, B tensor.Backend](params ...*Parameter[T, B]) (*ParameterSet[T, B], error) {
	s := &ParameterSet[T, B]{byName: make(map[string]*Parameter[T, B], len(params))}
	for _, p := range params {
		if err := s.Add(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends p.
func (s *ParameterSet[T, B]) Add(p *Parameter[T, B]) error {
	if _, ok := s.byName[p.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateParameter, p.Name())
	}
	s.order = append(s.order, p)
	s.byName[p.Name()] = p
	return nil
}

// Get returns the parameter called name.
func (s *ParameterSet[T, B]) Get(name string) (*Parameter[T, B], bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Names returns parameter names in order.
func (s *ParameterSet[T, B]) Names() []string {
	names := make([]string, len(s.order))
	for i, p := range s.order {
		names[i] = p.Name()
	}
	return names
}

// All returns the parameters in order.
func (s *ParameterSet[T, B]) All() []*Parameter[T, B] {
	return append([]*Parameter[T, B](nil), s.order...)
}

// Len returns the number of parameters.
func (s *ParameterSet[T, B]) Len() int {
	return len(s.order)
}

// NumElements returns the total number of scalar parameters.
func (s *ParameterSet[T, B]) NumElements() int {
	n := 0
	for _, p := range s.order {
		n += p.Shape().NumElements()
	}
	return n
}

// StateDict returns a map of parameter names to raw tensors.
// The tensors share storage with the parameters.
func (s *ParameterSet[T, B]) StateDict() map[string]*tensor.RawTensor {
	dict := make(map[string]*tensor.RawTensor, len(s.order))
	for _, p := range s.order {
		dict[p.Name()] = p.Tensor().Raw()
	}
	return dict
}

// LoadStateDict copies values from dict into the parameters.
// Every parameter must be present and no extra tensors are allowed.
func (s *ParameterSet[T, B]) LoadStateDict(dict map[string]*tensor.RawTensor) error {
	for _, p := range s.order {
		raw, ok := dict[p.Name()]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingParameter, p.Name())
		}
		if err := p.Load(raw); err != nil {
			return err
		}
	}
	if len(dict) != len(s.order) {
		var extra []string
		for name := range dict {
			if _, ok := s.byName[name]; !ok {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		return fmt.Errorf("%w: %s", ErrUnexpectedTensor, strings.Join(extra, ", "))
	}
	return nil
}

// AssignGrads sets each parameter's gradient from a tape gradient map.
// Parameters that did not take part in the graph get a nil gradient.
func (s *ParameterSet[T, B]) AssignGrads(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, p := range s.order {
		g, ok := grads[p.Tensor().Raw()]
		if !ok {
			p.ZeroGrad()
			continue
		}
		p.SetGrad(tensor.New[T](g, p.Tensor().Backend()))
	}
}

// ZeroGrad clears every gradient.
func (s *ParameterSet[T, B]) ZeroGrad() {
	for _, p := range s.order {
		p.ZeroGrad()
	}
}
