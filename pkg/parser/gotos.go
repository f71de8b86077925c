package parser

// resolveGotos checks every goto collected while parsing the current
// function against its label table, run once the function body is fully
// parsed so forward references are already recorded.
func (p *Parser) resolveGotos() error {
	for _, g := range p.tables.Gotos {
		if _, ok := p.tables.Labels[g.Label]; !ok {
			return p.errf("use of undeclared label '%s'", g.Label)
		}
		g.Where = g.Label
	}
	return nil
}
