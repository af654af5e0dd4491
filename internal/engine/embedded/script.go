package embedded

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"

	"github.com/law-makers/pricecompare/internal/engine"
)

// scriptBudget bounds one inline script; site scripts occasionally spin
var scriptBudget = 2 * time.Second

// runGlobal executes the inline scripts that mention global inside a minimal
// window mock and returns the exported value of window[global], or nil.
func runGlobal(ec *engine.ExtractionContext, global string) any {
	vm := goja.New()
	href := ec.PageURL.String()

	// Just enough browser surface for state assignments to run
	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("globalThis", vm.GlobalObject())
	vm.Set("location", map[string]interface{}{"href": href})
	vm.Set("document", map[string]interface{}{
		"location": map[string]interface{}{"href": href},
	})
	vm.Set("navigator", map[string]interface{}{"userAgent": "Mozilla/5.0"})
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	vm.Set("console", map[string]interface{}{"log": noop, "warn": noop, "error": noop})

	ran, failed := 0, 0
	ec.Doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		if t, ok := sel.Attr("type"); ok && t != "" && !strings.Contains(t, "javascript") {
			return
		}
		code := sel.Text()
		if !strings.Contains(code, global) {
			return
		}

		timer := time.AfterFunc(scriptBudget, func() { vm.Interrupt("script budget exceeded") })
		_, err := vm.RunString(code)
		timer.Stop()
		vm.ClearInterrupt()

		ran++
		if err != nil {
			// Most scripts touch DOM APIs the mock lacks; any assignment made
			// before the failure is kept.
			failed++
			ec.Logger.Debug().Err(err).Str("global", global).Msg("Inline script failed")
		}
	})

	val := vm.GlobalObject().Get(global)
	ec.Logger.Debug().Str("global", global).Int("scripts", ran).Int("failed", failed).Bool("found", !isMissing(val)).Msg("Inline state evaluated")
	if isMissing(val) {
		return nil
	}
	return normalize(val.Export())
}

func isMissing(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

// normalize converts goja's exported containers to the []any/map[string]any
// shapes the JSON sources produce
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case []interface{}:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case []map[string]interface{}:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}
