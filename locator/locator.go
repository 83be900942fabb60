package locator

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

var (
	ErrBadLocator = errors.New("bad locator")
	ErrBadQuery   = errors.New("bad query")
)

// URL is a decoded locator of the form
//
//	scheme:/seg1/seg2?key=val&key2#frag1/frag2
//
// Path and Fragment hold decoded components. The root marker "/" is not
// part of Path: "mem:/" has an empty Path and "mem:/a/b" has Path [a b].
type URL struct {
	Scheme      string
	Host        string
	Path        []string
	Absolute    bool
	Query       url.Values
	Fragment    []string
	HasFragment bool
}

// Parse decodes s into a URL.
func Parse(s string) (*URL, error) {
	res := &URL{}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		frag, err := SplitFragment(s[i+1:])
		if err != nil {
			return nil, err
		}
		res.Fragment = frag
		res.HasFragment = true
		s = s[:i]
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadLocator, err)
	}
	res.Scheme = u.Scheme
	res.Host = u.Host
	rawPath := u.EscapedPath()
	if u.Opaque != "" {
		rawPath = u.Opaque
	}
	res.Absolute = strings.HasPrefix(rawPath, "/")
	if res.Path, err = splitPath(rawPath); err != nil {
		return nil, err
	}
	if u.RawQuery != "" || u.ForceQuery {
		q, err := url.ParseQuery(u.RawQuery)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadQuery, err)
		}
		res.Query = q
	}
	return res, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *URL {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func splitPath(raw string) ([]string, error) {
	var res []string
	for _, seg := range strings.Split(raw, "/") {
		if seg == "" {
			continue
		}
		dec, err := url.PathUnescape(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: path segment %q: %w", ErrBadLocator, seg, err)
		}
		res = append(res, dec)
	}
	return res, nil
}

// SplitFragment decodes a fragment (with or without its leading '#') into
// its components. Components are separated by '/' when the fragment
// contains one, and by '.' otherwise. With '/' a single leading '/' is
// dropped and empty components are kept, so "#/" is the one empty key
// and "#a/" is the empty key below a. With '.' empty components are
// dropped.
func SplitFragment(frag string) ([]string, error) {
	frag = strings.TrimPrefix(frag, "#")
	if frag == "" {
		return nil, nil
	}
	sep, keepEmpty := ".", false
	if strings.Contains(frag, "/") {
		sep, keepEmpty = "/", true
		frag = strings.TrimPrefix(frag, "/")
	}
	var res []string
	for _, seg := range strings.Split(frag, sep) {
		if seg == "" && !keepEmpty {
			continue
		}
		dec, err := url.PathUnescape(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: fragment segment %q: %w", ErrBadLocator, seg, err)
		}
		res = append(res, dec)
	}
	return res, nil
}

// JoinFragment is the inverse of SplitFragment; the result always starts
// with '#'. Components are joined with '/', led by one more '/' when any
// component is empty.
func JoinFragment(segs []string) string {
	var b strings.Builder
	b.WriteByte('#')
	if slices.Contains(segs, "") {
		b.WriteByte('/')
	}
	for i, seg := range segs {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(EncodeFragmentSegment(seg))
	}
	return b.String()
}

// EncodeSegment escapes a path segment so that it survives Parse.
func EncodeSegment(seg string) string {
	return url.PathEscape(seg)
}

// EncodeFragmentSegment escapes a fragment component; both separators
// are escaped.
func EncodeFragmentSegment(seg string) string {
	return strings.ReplaceAll(url.PathEscape(seg), ".", "%2E")
}

func (u *URL) Clone() *URL {
	res := *u
	res.Path = slices.Clone(u.Path)
	res.Fragment = slices.Clone(u.Fragment)
	if u.Query != nil {
		res.Query = make(url.Values, len(u.Query))
		for k, vs := range u.Query {
			res.Query[k] = slices.Clone(vs)
		}
	}
	return &res
}

// IsRoot reports whether the path has no real segments.
func (u *URL) IsRoot() bool {
	return len(u.Path) == 0
}

// Last returns the final path segment, or "" at the root.
func (u *URL) Last() string {
	if len(u.Path) == 0 {
		return ""
	}
	return u.Path[len(u.Path)-1]
}

func (u *URL) PathString() string {
	segs := make([]string, len(u.Path))
	for i, seg := range u.Path {
		segs[i] = EncodeSegment(seg)
	}
	p := strings.Join(segs, "/")
	if u.Absolute || u.Scheme != "" || u.Host != "" {
		return "/" + p
	}
	return p
}

// FragmentString returns the encoded fragment including '#', or "" when
// the URL carries no fragment.
func (u *URL) FragmentString() string {
	if !u.HasFragment && len(u.Fragment) == 0 {
		return ""
	}
	return JoinFragment(u.Fragment)
}

// QueryString returns the encoded query without '?'. Keys are sorted and
// keys with a single empty value are rendered bare (?countItems).
func (u *URL) QueryString() string {
	if len(u.Query) == 0 {
		return ""
	}
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(u.Query)) {
		vs := u.Query[k]
		if len(vs) == 0 || (len(vs) == 1 && vs[0] == "") {
			parts = append(parts, url.QueryEscape(k))
			continue
		}
		for _, v := range vs {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(parts, "&")
}

func (u *URL) String() string {
	var b strings.Builder
	if u.Scheme != "" {
		b.WriteString(u.Scheme)
		b.WriteByte(':')
	}
	if u.Host != "" {
		b.WriteString("//")
		b.WriteString(u.Host)
	}
	b.WriteString(u.PathString())
	if q := u.QueryString(); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	b.WriteString(u.FragmentString())
	return b.String()
}

// HasQuery reports whether key appears in the query.
func (u *URL) HasQuery(key string) bool {
	_, ok := u.Query[key]
	return ok
}

// FirstQuery returns the first of keys present in the query.
func (u *URL) FirstQuery(keys ...string) (string, bool) {
	for _, k := range keys {
		if u.HasQuery(k) {
			return k, true
		}
	}
	return "", false
}

// QueryInt returns the integer value of key, or def if key is absent.
func (u *URL) QueryInt(key string, def int) (int, error) {
	v := u.Query.Get(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadQuery, key, v)
	}
	return i, nil
}

// Child returns the locator of the path segment seg below u, without
// query or fragment.
func (u *URL) Child(seg string) *URL {
	res := u.WithoutQuery().WithoutFragment()
	res.Path = append(res.Path, seg)
	res.Absolute = true
	return res
}

// Parent returns the locator of the parent path, without query or
// fragment. The parent of the root is the root.
func (u *URL) Parent() *URL {
	res := u.WithoutQuery().WithoutFragment()
	if len(res.Path) > 0 {
		res.Path = res.Path[:len(res.Path)-1]
	}
	return res
}

func (u *URL) WithFragment(segs ...string) *URL {
	res := u.Clone()
	res.Fragment = slices.Clone(segs)
	res.HasFragment = true
	return res
}

func (u *URL) WithoutFragment() *URL {
	res := u.Clone()
	res.Fragment = nil
	res.HasFragment = false
	return res
}

func (u *URL) WithQuery(q url.Values) *URL {
	res := u.Clone()
	res.Query = q
	return res
}

func (u *URL) WithoutQuery() *URL {
	return u.WithQuery(nil)
}

// WithScheme returns a copy of u under another scheme.
func (u *URL) WithScheme(scheme string) *URL {
	res := u.Clone()
	res.Scheme = scheme
	res.Absolute = true
	return res
}

// Resolve resolves ref against u as a base locator. A fragment-only
// reference keeps the base document.
func (u *URL) Resolve(ref string) (*URL, error) {
	if strings.HasPrefix(ref, "#") {
		frag, err := SplitFragment(ref)
		if err != nil {
			return nil, err
		}
		return u.WithFragment(frag...), nil
	}
	r, err := Parse(ref)
	if err != nil {
		return nil, err
	}
	if r.Scheme != "" {
		return r, nil
	}
	base, err := url.Parse(u.WithoutFragment().String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadLocator, err)
	}
	rel, err := url.Parse(r.WithoutFragment().String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadLocator, err)
	}
	res, err := Parse(base.ResolveReference(rel).String())
	if err != nil {
		return nil, err
	}
	res.Fragment = r.Fragment
	res.HasFragment = r.HasFragment
	return res, nil
}
