// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package policydsl_test

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/holomush/cedarcst/internal/policydsl"
)

// ignorePos lets cmp compare two independently-parsed ASTs by shape alone:
// reprinting a policy through String() rarely reproduces the original byte
// offsets (spacing and clause order can shift), so position is deliberately
// excluded from the round-trip comparison.
var ignorePos = cmp.Comparer(func(a, b lexer.Position) bool { return true })

func TestPolicy_RoundTrip(t *testing.T) {
	cases := []string{
		`permit(principal, action, resource);`,
		`permit(principal is character, action in ["read", "write"], resource is location);`,
		`forbid(principal is character, action in ["delete"], resource == "system:config");`,
		`permit(principal is character, action in ["read"], resource is location) when { resource.id == "abc" };`,
		`permit(principal is character, action in ["read"], resource is property) when { resource.visibility == "public" || resource.visibility == "private" };`,
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			first, err := policydsl.Parse(src)
			require.NoError(t, err)

			reprinted := first.String()
			second, err := policydsl.Parse(reprinted)
			require.NoError(t, err, "reprinted policy %q failed to reparse", reprinted)

			if diff := cmp.Diff(first, second, ignorePos); diff != "" {
				t.Errorf("parse -> String() -> reparse diverged (-first +second):\n%s", diff)
			}
		})
	}
}
