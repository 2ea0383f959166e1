package herb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/herbwise/fangmatch/internal/domain/herb"
)

func TestResolveHerbAlias(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"known alias", "双花", "金银花"},
		{"another alias", "元参", "玄参"},
		{"canonical passes through", "金银花", "金银花"},
		{"unknown passes through", "不存在的药", "不存在的药"},
		{"whitespace trimmed", "  云苓  ", "茯苓"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, herb.ResolveHerbAlias(tc.in))
		})
	}
}

func TestResolveHerbAlias_Idempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"双花", "金银花", "生军", "大黄", "随便什么"} {
		once := herb.ResolveHerbAlias(in)
		twice := herb.ResolveHerbAlias(once)
		assert.Equal(t, once, twice, "resolving %q twice must equal resolving once", in)
	}
}

func TestResolveBookAlias(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"guillemets stripped", "《伤寒论》", "伤寒论"},
		{"guillemets with alias", "《伤寒》", "伤寒论"},
		{"bare alias", "金匮", "金匮要略"},
		{"canonical passes through", "温病条辨", "温病条辨"},
		{"unknown passes through", "某家秘方集", "某家秘方集"},
		{"empty becomes unknown", "", herb.BookUnknown},
		{"whitespace becomes unknown", "   ", herb.BookUnknown},
		{"guillemets only becomes unknown", "《》", herb.BookUnknown},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, herb.ResolveBookAlias(tc.in))
		})
	}
}

func TestResolveBookAlias_Idempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"《伤寒论》", "金匮", "", "温病条辨"} {
		once := herb.ResolveBookAlias(in)
		assert.Equal(t, once, herb.ResolveBookAlias(once))
	}
}
