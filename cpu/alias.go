package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"

	"github.com/casbin/govaluate"
	mapset "github.com/deckarep/golang-set/v2"
)

// aliasRule maps one raw, OS-reported token to a canonical catalog feature
// name. An unconditional rule (predicate == nil) always fires once its raw
// token is present; a conditional rule only fires when predicate evaluates
// to true against the probed context.
type aliasRule struct {
	raw       string
	feature   string
	predicate *govaluate.EvaluableExpression
}

// aliasTable is the compiled form of the knowledge base's feature_aliases
// list, applied in declaration order.
type aliasTable struct {
	rules []aliasRule
}

func compileAliasRules(raw []rawAliasRule) ([]aliasRule, error) {
	rules := make([]aliasRule, 0, len(raw))
	for _, r := range raw {
		rule := aliasRule{raw: r.Raw, feature: r.Feature}
		if r.When != "" {
			expr, err := govaluate.NewEvaluableExpression(r.When)
			if err != nil {
				return nil, wrapCatalogError(err, "malformed alias predicate %q for raw token %q", r.When, r.Raw)
			}
			rule.predicate = expr
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// identifierSanitizer turns an arbitrary raw token (which may contain '.',
// '-', or other punctuation, e.g. a Darwin sysctl name) into a valid
// govaluate parameter identifier.
var identifierSanitizer = strings.NewReplacer(".", "_", "-", "_", " ", "_")

func sanitizeIdentifier(s string) string {
	return identifierSanitizer.Replace(s)
}

func truthy(v string) bool {
	return v != "" && v != "0" && !strings.EqualFold(v, "false")
}

// predicateParams builds the parameter map available to alias predicates:
// vendor, os, a has_<token> boolean per raw feature token present, and one
// entry (plus its has_ boolean) per OS-specific extra key/value pair.
func predicateParams(tokens mapset.Set[string], extra map[string]string, vendor, osName string) map[string]any {
	params := map[string]any{
		"vendor": vendor,
		"os":     osName,
	}
	tokens.Each(func(t string) bool {
		params["has_"+sanitizeIdentifier(t)] = true
		return false
	})
	for k, v := range extra {
		id := sanitizeIdentifier(k)
		params[id] = v
		params["has_"+id] = truthy(v)
	}
	return params
}

// resolve maps a probed record's raw tokens (its Features set plus any
// truthy Extra entries) to canonical catalog feature names. Rules are tried
// in declaration order; a raw token with no matching rule, or whose rule's
// predicate does not hold, passes through unchanged -- it simply will not
// satisfy any catalog node's feature-subset check. Extra-only tokens (e.g.
// Darwin hw.optional.* leaves) only ever contribute through a matching rule;
// they are not features in their own right.
func (t *aliasTable) resolve(tokens mapset.Set[string], extra map[string]string, vendor, osName string) mapset.Set[string] {
	params := predicateParams(tokens, extra, vendor, osName)
	out := mapset.NewThreadUnsafeSet[string]()
	consumed := mapset.NewThreadUnsafeSet[string]()

	for _, rule := range t.rules {
		present := tokens.Contains(rule.raw) || truthy(extra[rule.raw])
		if !present {
			continue
		}
		if rule.predicate != nil {
			result, err := rule.predicate.Evaluate(params)
			if err != nil {
				continue
			}
			ok, isBool := result.(bool)
			if !isBool || !ok {
				continue
			}
		}
		out.Add(rule.feature)
		consumed.Add(rule.raw)
	}

	tokens.Each(func(tok string) bool {
		if !consumed.Contains(tok) {
			out.Add(tok)
		}
		return false
	})
	return out
}
