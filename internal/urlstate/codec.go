package urlstate

import (
	"net/url"
	"sort"
	"strings"
)

// Codec converts between State and the URL fragment.
type Codec interface {
	Encode(State) string
	Decode(hash string) State
}

// QueryCodec writes "k=v" pairs joined by "&", keys sorted.
type QueryCodec struct{}

func (QueryCodec) Encode(s State) string {
	v := url.Values{}
	for k, val := range s {
		if k == "" || val == "" {
			continue
		}
		v.Set(k, val)
	}
	return v.Encode()
}

func (QueryCodec) Decode(hash string) State {
	out := State{}
	for _, pair := range strings.Split(trimHash(hash), "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil || key == "" {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil || val == "" {
			continue
		}
		out[key] = val
	}
	return out
}

// ModuleCodec writes one group per module, "id:<module>;<prop>:<value>",
// groups joined by "|". Any of `"|;\:={}` inside a token is backslash escaped
// and "%" is written as "%25", so the fragment survives the browser
// percent-encoding it.
// Flat keys map to groups as "<module>.<prop>"; keys without a dot belong to
// the group with id "_".
type ModuleCodec struct{}

const globalGroup = "_"

const specialChars = `"|;\:={}`

func (ModuleCodec) Encode(s State) string {
	groups := map[string]map[string]string{}
	for k, v := range s {
		if k == "" || v == "" {
			continue
		}
		mod, prop := splitKey(k)
		if groups[mod] == nil {
			groups[mod] = map[string]string{}
		}
		groups[mod][prop] = v
	}
	mods := make([]string, 0, len(groups))
	for m := range groups {
		mods = append(mods, m)
	}
	sort.Strings(mods)

	parts := make([]string, 0, len(mods))
	for _, m := range mods {
		props := make([]string, 0, len(groups[m]))
		for p := range groups[m] {
			props = append(props, p)
		}
		sort.Strings(props)
		var b strings.Builder
		b.WriteString("id:")
		b.WriteString(escape(m))
		for _, p := range props {
			b.WriteByte(';')
			b.WriteString(escape(p))
			b.WriteByte(':')
			b.WriteString(escape(groups[m][p]))
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "|")
}

func (ModuleCodec) Decode(hash string) State {
	raw := trimHash(hash)
	if u, err := url.PathUnescape(raw); err == nil {
		raw = u
	}
	out := State{}
	for _, group := range splitUnescaped(raw, '|') {
		if group == "" {
			continue
		}
		mod := globalGroup
		props := map[string]string{}
		for _, pair := range splitUnescaped(group, ';') {
			kv := splitUnescaped(pair, ':')
			if len(kv) < 2 {
				continue
			}
			name := unescape(kv[0])
			value := unescape(strings.Join(kv[1:], ":"))
			if name == "id" {
				mod = value
				continue
			}
			props[name] = value
		}
		for p, v := range props {
			if p == "" || v == "" {
				continue
			}
			if mod == globalGroup {
				out[p] = v
			} else {
				out[mod+"."+p] = v
			}
		}
	}
	return out
}

func splitKey(k string) (module, prop string) {
	i := strings.LastIndexByte(k, '.')
	if i <= 0 || i == len(k)-1 {
		return globalGroup, k
	}
	return k[:i], k[i+1:]
}

func escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '%':
			b.WriteString("%25")
			continue
		case strings.IndexByte(specialChars, s[i]) >= 0:
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// splitUnescaped splits on sep, ignoring separators preceded by a backslash.
// Escapes are kept in the parts.
func splitUnescaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func trimHash(hash string) string {
	return strings.TrimPrefix(strings.TrimSpace(hash), "#")
}
