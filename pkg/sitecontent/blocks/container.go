package blocks

import (
	"fmt"
	"slices"
)

// ColumnOptions parametrizes a multi-column container block.
type ColumnOptions struct {
	AllowedColumnCounts []int
	DefaultColumnCount  int
}

func (o ColumnOptions) validate(tag string) error {
	if len(o.AllowedColumnCounts) == 0 {
		return fmt.Errorf("%w: container %q allows no column count", ErrInvalidDefinition, tag)
	}
	for _, n := range o.AllowedColumnCounts {
		if n < 1 {
			return fmt.Errorf("%w: container %q allows column count %d", ErrInvalidDefinition, tag, n)
		}
	}
	if !slices.Contains(o.AllowedColumnCounts, o.DefaultColumnCount) {
		return fmt.Errorf("%w: default column count %d of container %q is not allowed", ErrInvalidDefinition, o.DefaultColumnCount, tag)
	}
	return nil
}

// MakeContainerType builds a multi-column container block whose content must
// conform to inner. Every call returns an independent definition; inner may
// itself declare containers built by this function, to any depth.
func MakeContainerType(tag, label string, inner *Schema, opts ColumnOptions) (BlockDefinition, error) {
	if inner == nil {
		return BlockDefinition{}, fmt.Errorf("%w: container %q has no inner schema", ErrInvalidDefinition, tag)
	}
	if err := opts.validate(tag); err != nil {
		return BlockDefinition{}, err
	}

	return BlockDefinition{
		tag:   tag,
		label: label,
		typ:   TypeColumns,
		inner: inner,
		columns: ColumnOptions{
			AllowedColumnCounts: slices.Clone(opts.AllowedColumnCounts),
			DefaultColumnCount:  opts.DefaultColumnCount,
		},
	}, nil
}

// MakeRecursiveContainerType builds a container whose inner schema is base
// plus the container itself, so columns may hold further columns without a
// depth limit. base is not modified; add the returned definition to a schema
// derived from base with Extend.
func MakeRecursiveContainerType(tag, label string, base *Schema, opts ColumnOptions) (BlockDefinition, error) {
	if base == nil {
		return BlockDefinition{}, fmt.Errorf("%w: container %q has no base schema", ErrInvalidDefinition, tag)
	}

	inner := base.clone()
	def, err := MakeContainerType(tag, label, inner, opts)
	if err != nil {
		return BlockDefinition{}, err
	}
	// inner is not yet visible to anyone, so closing the cycle here keeps
	// the immutable-after-construction contract
	if err := inner.add(def); err != nil {
		return BlockDefinition{}, err
	}
	return def, nil
}
