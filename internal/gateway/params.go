package gateway

import "strconv"

type param struct {
	key   string
	value string
}

// Params is an ordered set of protocol fields. Encoding follows insertion
// order, and a field added twice keeps its first position with the new value.
type Params struct {
	pairs []param
}

func NewParams() *Params {
	return &Params{}
}

func (p *Params) Set(key, value string) *Params {
	for i := range p.pairs {
		if p.pairs[i].key == key {
			p.pairs[i].value = value
			return p
		}
	}
	p.pairs = append(p.pairs, param{key: key, value: value})
	return p
}

func (p *Params) SetInt(key string, value int64) *Params {
	return p.Set(key, strconv.FormatInt(value, 10))
}

// SetBit writes 1 for true and 0 for false.
func (p *Params) SetBit(key string, value bool) *Params {
	if value {
		return p.Set(key, "1")
	}
	return p.Set(key, "0")
}

// SetOptional adds the field only when value is non-nil and non-empty.
func (p *Params) SetOptional(key string, value *string) *Params {
	if value == nil || *value == "" {
		return p
	}
	return p.Set(key, *value)
}

func (p *Params) Get(key string) (string, bool) {
	for _, kv := range p.pairs {
		if kv.key == key {
			return kv.value, true
		}
	}
	return "", false
}

func (p *Params) Len() int {
	return len(p.pairs)
}
