package mem

import (
	"fmt"
	"slices"

	"github.com/signadot/itemscript/connector"
	"github.com/signadot/itemscript/debug"
	"github.com/signadot/itemscript/locator"
	"github.com/signadot/itemscript/value"
)

const (
	queryCountItems = "countItems"
	queryKeys       = "keys"
	queryPagedKeys  = "pagedKeys"
	queryPagedItems = "pagedItems"
	queryUUID       = "uuid"

	paramStartRow = "startRow"
	paramNumRows  = "numRows"
)

var queries = []string{queryCountItems, queryKeys, queryPagedKeys, queryPagedItems}

// query answers q for the node at u's path. The result is a new Item
// whose source is u re-expressed under mem:, and u's fragment is resolved
// within it. A missing node yields nil.
func (c *Connector) query(u *locator.URL, q string) (*value.Value, error) {
	n := c.find(u.Path)
	if n == nil {
		return nil, nil
	}
	var res, meta *value.Value
	switch q {
	case queryCountItems:
		res = value.FromKeyVals([]value.KeyVal{
			{Key: "count", Val: value.FromInt(int64(len(n.order)))},
		})
	case queryKeys:
		res = value.NewArray()
		for _, seg := range n.order {
			_ = res.Append(value.FromString(seg))
		}
	case queryPagedKeys, queryPagedItems:
		keys, m, err := c.page(n, u)
		if err != nil {
			return nil, err
		}
		meta = m
		res = value.NewArray()
		for _, k := range keys {
			if q == queryPagedKeys {
				_ = res.Append(value.FromString(k))
				continue
			}
			cv := value.Null()
			if v := n.children[k].item.Value(); v != nil {
				cv = v.Copy()
			}
			_ = res.Append(value.FromSlice([]*value.Value{value.FromString(k), cv}))
		}
	default:
		return nil, fmt.Errorf("%w: %s", connector.ErrUnknownQueryType, q)
	}
	src := u.WithScheme(Scheme).WithoutFragment()
	opts := c.itemOpts()
	if meta != nil {
		opts = append(opts, value.WithMeta(meta))
	}
	it, err := value.NewItem(src.String(), res, opts...)
	if err != nil {
		return nil, err
	}
	if debug.Query() {
		debug.Logf("query %s: %s\n", src, res)
	}
	return it.GetPath(u.Fragment)
}

// page returns the window of sorted child keys selected by startRow and
// numRows, with the paging metadata.
func (c *Connector) page(n *node, u *locator.URL) ([]string, *value.Value, error) {
	start, err := u.QueryInt(paramStartRow, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", connector.ErrBadQuery, err)
	}
	num, err := u.QueryInt(paramNumRows, c.numRows)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", connector.ErrBadQuery, err)
	}
	if num < 0 {
		return nil, nil, fmt.Errorf("%w: %s=%d", connector.ErrBadQuery, paramNumRows, num)
	}
	start = max(start, 0)
	keys := slices.Sorted(slices.Values(n.order))
	total := len(keys)
	start = min(start, total)
	end := min(start+num, total)
	meta := value.FromKeyVals([]value.KeyVal{
		{Key: "totalCount", Val: value.FromInt(int64(total))},
		{Key: "startRow", Val: value.FromInt(int64(start))},
		{Key: "numRows", Val: value.FromInt(int64(end - start))},
	})
	return keys[start:end], meta, nil
}
