package effect

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	fieldDelimiter    = ","
	subFieldDelimiter = "."
	flipSuffix        = "-FLIP"

	maxPercentBase     = 100
	maxPercentVariance = 1000
	maxChance          = 100.0
)

// Field indices of a DSL line.
const (
	fieldID = iota
	fieldKeyword
	fieldDuration
	fieldIgnoreAttack
	fieldIgnoreDefense
	fieldUserSymbol
	fieldBase
	fieldVariance
	fieldTargetSymbol
	fieldChance
)

// ParseOptions carries the configured defaults and the diagnostics sink.
type ParseOptions struct {
	// Default duration pair used when an INFLICT/RELIEVE line leaves the
	// duration field blank.
	DefaultMinDuration int
	DefaultMaxDuration int

	// Logger receives one warning per failed rule. Nil discards them.
	Logger *zap.Logger
}

// DefaultParseOptions returns options with a 1..3 turn default duration.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{DefaultMinDuration: 1, DefaultMaxDuration: 3}
}

// Parse turns one DSL line into a descriptor. It never panics and never
// returns an error: every failed rule clears Valid and records a diagnostic.
func Parse(line string, opts ParseOptions) *Descriptor {
	p := &parser{
		d:    &Descriptor{Valid: true},
		opts: opts,
		line: line,
	}
	if p.opts.Logger == nil {
		p.opts.Logger = zap.NewNop()
	}
	p.run()
	return p.d
}

// ParseAll parses every non-blank, non-comment line of r. Invalid descriptors
// are returned too so callers can report them; filter on Valid before use.
func ParseAll(r io.Reader, opts ParseOptions) ([]*Descriptor, error) {
	var out []*Descriptor
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lineOpts := opts
		if lineOpts.Logger != nil {
			lineOpts.Logger = lineOpts.Logger.With(zap.Int("line", lineNo))
		}
		out = append(out, Parse(line, lineOpts))
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("failed to read effect lines: %w", err)
	}
	return out, nil
}

type parser struct {
	d      *Descriptor
	opts   ParseOptions
	line   string
	fields []string
}

func (p *parser) fail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.d.Valid = false
	p.d.Diagnostics = append(p.d.Diagnostics, msg)
	p.opts.Logger.Warn("invalid effect descriptor",
		zap.String("reason", msg),
		zap.String("source", p.line),
	)
}

func (p *parser) run() {
	p.fields = strings.Split(p.line, fieldDelimiter)
	for i := range p.fields {
		p.fields[i] = strings.TrimSpace(p.fields[i])
	}
	if n := len(p.fields); n != fieldChance && n != fieldChance+1 {
		p.fail("expected 9 or 10 fields, got %d", n)
		return
	}

	p.parseID()
	if !p.parseKeyword() {
		return
	}
	if p.d.Kind.UsesAilment() {
		p.parseDuration()
	}
	if p.d.Kind == KindDamage {
		p.d.IgnoreAttack = p.parseIgnore(fieldIgnoreAttack, "ignore_attack")
		p.d.IgnoreDefense = p.parseIgnore(fieldIgnoreDefense, "ignore_defense")
	}
	p.parseSymbols()
	p.parseMagnitudes()
	p.parseChance()
}

func (p *parser) parseID() {
	id, err := strconv.Atoi(p.fields[fieldID])
	if err != nil {
		p.fail("id %q is not an integer", p.fields[fieldID])
		return
	}
	p.d.ID = id
}

func (p *parser) parseKeyword() bool {
	kw := strings.ToUpper(p.fields[fieldKeyword])
	if strings.HasSuffix(kw, flipSuffix) {
		p.d.Flip = true
		kw = strings.TrimSuffix(kw, flipSuffix)
	}
	for k, s := range kindKeywords {
		if s == kw {
			p.d.Kind = k
		}
	}
	if p.d.Kind == KindNone {
		p.fail("unknown keyword %q", p.fields[fieldKeyword])
		return false
	}
	if p.d.Flip && !p.d.Kind.CanFlip() {
		p.fail("keyword %q does not accept %s", kw, flipSuffix)
		return false
	}
	return true
}

func (p *parser) parseDuration() {
	raw := p.fields[fieldDuration]
	if raw == "" {
		p.d.MinDuration = p.opts.DefaultMinDuration
		p.d.MaxDuration = p.opts.DefaultMaxDuration
	} else {
		parts := strings.Split(raw, subFieldDelimiter)
		if len(parts) != 2 {
			p.fail("duration %q must be min.max", raw)
			return
		}
		lo, errLo := strconv.Atoi(parts[0])
		hi, errHi := strconv.Atoi(parts[1])
		if errLo != nil || errHi != nil {
			p.fail("duration %q must be two integers", raw)
			return
		}
		p.d.MinDuration, p.d.MaxDuration = lo, hi
	}
	if p.d.MinDuration < 0 || p.d.MaxDuration < 0 {
		p.fail("duration %d.%d is negative", p.d.MinDuration, p.d.MaxDuration)
	} else if p.d.MaxDuration < p.d.MinDuration {
		p.fail("duration max %d is below min %d", p.d.MaxDuration, p.d.MinDuration)
	}
}

func (p *parser) parseIgnore(idx int, name string) ElementSet {
	raw := strings.ToUpper(p.fields[idx])
	if raw == "" {
		return 0
	}
	var set ElementSet
	for _, tok := range strings.Split(raw, subFieldDelimiter) {
		flags, ok := parseElementToken(strings.TrimSpace(tok))
		if !ok {
			p.opts.Logger.Warn("unrecognized ignore token",
				zap.String("field", name),
				zap.String("token", tok),
				zap.String("source", p.line),
			)
			continue
		}
		set |= flags
	}
	if set.IsEmpty() {
		p.fail("%s %q sets no categories", name, p.fields[idx])
	}
	return set
}

func (p *parser) parseSymbols() {
	user := p.fields[fieldUserSymbol]

	if p.d.Kind.UsesAilment() {
		ailment, ok := ParseAilment(user)
		if !ok {
			p.fail("ailment %q does not resolve", user)
			return
		}
		p.d.Ailment = ailment
		return
	}

	attr, ok := ParseAttribute(user)
	if !ok {
		p.fail("user attribute %q does not resolve", user)
	}
	p.d.UserAttribute = attr

	target := p.fields[fieldTargetSymbol]
	attr, ok = ParseAttribute(target)
	if !ok {
		p.fail("target attribute %q does not resolve", target)
	}
	p.d.TargetAttribute = attr
}

func (p *parser) parseMagnitudes() {
	if m, ok := p.parseMagnitude(fieldBase, "base"); ok {
		if m.Percent && m.Value > maxPercentBase {
			p.fail("percent base %d exceeds %d", m.Value, maxPercentBase)
		}
		p.d.Base = m
	}
	if m, ok := p.parseMagnitude(fieldVariance, "variance"); ok {
		switch {
		case m.Value < 0:
			p.fail("variance %d is negative", m.Value)
		case m.Percent && m.Value > maxPercentVariance:
			p.fail("percent variance %d exceeds %d", m.Value, maxPercentVariance)
		}
		p.d.Variance = m
	}
}

func (p *parser) parseMagnitude(idx int, name string) (Magnitude, bool) {
	raw := p.fields[idx]
	if raw == "" {
		return Magnitude{}, true
	}
	parts := strings.SplitN(raw, subFieldDelimiter, 2)
	if len(parts) != 2 {
		p.fail("%s %q must be AMOUNT.n or PC.n", name, raw)
		return Magnitude{}, false
	}
	v, err := strconv.Atoi(parts[1])
	if err != nil {
		p.fail("%s %q has a non-integer value", name, raw)
		return Magnitude{}, false
	}
	switch strings.ToUpper(parts[0]) {
	case "AMOUNT":
		return Amount(v), true
	case "PC":
		return Percent(v), true
	default:
		p.fail("%s %q must be AMOUNT.n or PC.n", name, raw)
		return Magnitude{}, false
	}
}

func (p *parser) parseChance() {
	if len(p.fields) <= fieldChance || p.fields[fieldChance] == "" {
		p.fail("chance field is missing")
		return
	}
	c, err := strconv.ParseFloat(p.fields[fieldChance], 64)
	if err != nil || math.IsNaN(c) {
		p.fail("chance %q is not a number", p.fields[fieldChance])
		return
	}
	if c < 0 {
		c = 0
	}
	if c > maxChance {
		c = maxChance
	}
	p.d.Chance = c
}
