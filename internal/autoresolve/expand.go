// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package autoresolve expands binding templates on the host side before the
// text reaches a descriptor. {name} is replaced by a request value and
// %name% by a setting value. Because % always opens a setting reference, a
// template that needs a literal percent sign in SQL spells it as a
// character-code call such as CHAR(37).
package autoresolve

import (
	"fmt"
	"strings"
)

// Settings looks up a setting by name.
type Settings func(name string) (string, bool)

// Expand resolves every token in template. An unknown {name}, an unknown
// %setting% or an unterminated token is an error.
func Expand(template string, params map[string]string, settings Settings) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		c := template[i]
		switch c {
		case '{':
			end := strings.IndexByte(template[i+1:], '}')
			if end == -1 {
				return "", fmt.Errorf("unterminated {token} at offset %d", i)
			}
			name := template[i+1 : i+1+end]
			v, ok := lookupParam(params, name)
			if !ok {
				return "", fmt.Errorf("no value for {%s}", name)
			}
			b.WriteString(v)
			i += end + 2
		case '%':
			end := strings.IndexByte(template[i+1:], '%')
			if end == -1 {
				return "", fmt.Errorf("unterminated %%setting%% at offset %d", i)
			}
			name := template[i+1 : i+1+end]
			if name == "" || settings == nil {
				return "", fmt.Errorf("no setting for %%%s%%", name)
			}
			v, ok := settings(name)
			if !ok {
				return "", fmt.Errorf("no setting for %%%s%%", name)
			}
			b.WriteString(v)
			i += end + 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// lookupParam matches names case-insensitively, as query-string keys are.
func lookupParam(params map[string]string, name string) (string, bool) {
	if v, ok := params[name]; ok {
		return v, true
	}
	for k, v := range params {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
