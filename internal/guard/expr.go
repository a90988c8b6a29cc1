// Package guard compiles textual guard expressions into plan conditions.
package guard

import (
	"fmt"

	"github.com/expr-lang/expr"
	"go.uber.org/zap"

	"github.com/levelplan/levelplan/internal/plan"
)

// Expr compiles source against the fields of snapshot type T. Field names
// follow `expr:"..."` struct tags. Evaluation errors are logged and read as
// false, so a guard never aborts a tick.
func Expr[T any](source string, log *zap.Logger) (plan.Condition[T], error) {
	if log == nil {
		log = zap.NewNop()
	}
	var env T
	program, err := expr.Compile(source, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile guard %q: %w", source, err)
	}
	return func(ctx T) bool {
		out, err := expr.Run(program, ctx)
		if err != nil {
			log.Warn("guard evaluation failed", zap.String("expr", source), zap.Error(err))
			return false
		}
		b, _ := out.(bool)
		return b
	}, nil
}

// MustExpr is Expr for guards known at build time.
func MustExpr[T any](source string) plan.Condition[T] {
	c, err := Expr[T](source, nil)
	if err != nil {
		panic(err)
	}
	return c
}

func Not[T any](c plan.Condition[T]) plan.Condition[T] {
	return func(ctx T) bool { return !c(ctx) }
}

// All holds when every condition holds. It short-circuits in order.
func All[T any](cs ...plan.Condition[T]) plan.Condition[T] {
	return func(ctx T) bool {
		for _, c := range cs {
			if !c(ctx) {
				return false
			}
		}
		return true
	}
}

func Any[T any](cs ...plan.Condition[T]) plan.Condition[T] {
	return func(ctx T) bool {
		for _, c := range cs {
			if c(ctx) {
				return true
			}
		}
		return false
	}
}
