package symbols

// Interner maps identifier text to stable integer ids. It is append-only and
// belongs to a single compilation session; it is not safe for concurrent use.
type Interner struct {
	ids   map[string]int
	names []string
}

func NewInterner() *Interner {
	return &Interner{
		ids: make(map[string]int),
		// id 0 is reserved so that the zero Symbol never aliases a real name
		names: []string{""},
	}
}

// Intern returns the symbol for text in the given namespace. The same text
// always yields the same id regardless of namespace.
func (in *Interner) Intern(text string, ns Namespace) Symbol {
	id, ok := in.ids[text]
	if !ok {
		id = len(in.names)
		in.ids[text] = id
		in.names = append(in.names, text)
	}
	return Symbol{ns: ns, id: id, name: text}
}

func (in *Interner) Field(text string) Symbol    { return in.Intern(text, Field) }
func (in *Interner) Function(text string) Symbol { return in.Intern(text, Function) }
func (in *Interner) TypeName(text string) Symbol { return in.Intern(text, TypeName) }
func (in *Interner) Variable(text string) Symbol { return in.Intern(text, Variable) }
func (in *Interner) Pseudo(text string) Symbol   { return in.Intern(text, Pseudo) }

// String is the inverse of Intern.
func (in *Interner) String(s Symbol) string {
	if s.id <= 0 || s.id >= len(in.names) {
		panic("symbols: symbol does not belong to this interner")
	}
	return in.names[s.id]
}

// Len is the number of distinct names interned so far.
func (in *Interner) Len() int {
	return len(in.names) - 1
}
