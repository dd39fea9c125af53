package query

import (
	"slices"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// FunctionType is the tag of a score function.
type FunctionType string

// Score function tags. A function carrying only a weight has no tag key of
// its own and is matched by the weight sibling.
const (
	FunctionScriptScore      FunctionType = "script_score"
	FunctionRandomScore      FunctionType = "random_score"
	FunctionFieldValueFactor FunctionType = "field_value_factor"
	FunctionGauss            FunctionType = "gauss"
	FunctionLinear           FunctionType = "linear"
	FunctionExp              FunctionType = "exp"
	FunctionWeight           FunctionType = "weight"
)

// AllFunctionTypes returns every score function tag.
func AllFunctionTypes() []FunctionType {
	return []FunctionType{
		FunctionScriptScore, FunctionRandomScore, FunctionFieldValueFactor,
		FunctionGauss, FunctionLinear, FunctionExp, FunctionWeight,
	}
}

// ScoreFunction is a member of the function_score function family. Every
// function may carry a filter and a weight next to its tag.
type ScoreFunction interface {
	FunctionType() FunctionType
	EncodeBody(w *codec.Writer) error
	IsEqualTo(other ScoreFunction) bool
	MarshalJSON() ([]byte, error)

	isScoreFunction()
}

var functionRegistry *codec.Registry[ScoreFunction]

func init() {
	functionRegistry = codec.NewRegistry[ScoreFunction]("score_function").
		Register(string(FunctionScriptScore), decodeScriptScore).
		Register(string(FunctionRandomScore), decodeRandomScore).
		Register(string(FunctionFieldValueFactor), decodeFieldValueFactor).
		Register(string(FunctionGauss), decodeDecay).
		Register(string(FunctionLinear), decodeDecay).
		Register(string(FunctionExp), decodeDecay).
		Register(string(FunctionWeight), decodeWeight).
		WithFallback(string(FunctionWeight))
}

// FunctionRegistry returns the tag registry of the score function family.
func FunctionRegistry() *codec.Registry[ScoreFunction] { return functionRegistry }

// UnmarshalFunction decodes a score function.
func UnmarshalFunction(data []byte) (ScoreFunction, error) {
	return functionRegistry.Decode(data)
}

func marshalFunction(f ScoreFunction, filter Query, weight *float64) ([]byte, error) {
	return codec.MarshalTaggedWith(string(f.FunctionType()), f, func(w *codec.Writer) error {
		writeModifiers(w, filter, weight)
		return w.Err()
	})
}

func writeModifiers(w *codec.Writer, filter Query, weight *float64) {
	if filter != nil {
		w.Field("filter", filter)
	}
	w.OptFloat("weight", weight)
}

// readModifiers reads the filter and weight siblings of a function tag.
func readModifiers(parent *codec.Reader) (Query, *float64, error) {
	filter := optQuery(parent, "filter")
	weight := parent.OptFloat("weight")
	return filter, weight, parent.Err()
}

// ScriptScoreFunction scores with a script.
type ScriptScoreFunction struct {
	Script Script
	Filter Query
	Weight *float64
}

func (*ScriptScoreFunction) FunctionType() FunctionType { return FunctionScriptScore }
func (*ScriptScoreFunction) isScoreFunction()           {}

func (f *ScriptScoreFunction) EncodeBody(w *codec.Writer) error {
	w.Field("script", f.Script)
	return w.Err()
}

func (f *ScriptScoreFunction) MarshalJSON() ([]byte, error) {
	return marshalFunction(f, f.Filter, f.Weight)
}

func (f *ScriptScoreFunction) IsEqualTo(other ScoreFunction) bool { return codec.EqualAs(f, other) }

func decodeScriptScore(in codec.Input) (ScoreFunction, error) {
	r, err := in.Object()
	if err != nil {
		return nil, err
	}
	raw := r.Raw("script")
	if raw == nil {
		_ = r.String("script")
		return nil, r.Err()
	}
	script, err := DecodeScript(raw)
	if err != nil {
		return nil, err
	}
	filter, weight, err := readModifiers(in.Parent)
	if err != nil {
		return nil, err
	}
	return &ScriptScoreFunction{Script: script, Filter: filter, Weight: weight}, nil
}

// RandomScoreFunction scores uniformly at random, reproducibly when seeded.
type RandomScoreFunction struct {
	Seed   *int
	Field  *string
	Filter Query
	Weight *float64
}

func (*RandomScoreFunction) FunctionType() FunctionType { return FunctionRandomScore }
func (*RandomScoreFunction) isScoreFunction()           {}

func (f *RandomScoreFunction) EncodeBody(w *codec.Writer) error {
	w.OptInt("seed", f.Seed).OptString("field", f.Field)
	return w.Err()
}

func (f *RandomScoreFunction) MarshalJSON() ([]byte, error) {
	return marshalFunction(f, f.Filter, f.Weight)
}

func (f *RandomScoreFunction) IsEqualTo(other ScoreFunction) bool { return codec.EqualAs(f, other) }

func decodeRandomScore(in codec.Input) (ScoreFunction, error) {
	r, err := in.Object()
	if err != nil {
		return nil, err
	}
	f := &RandomScoreFunction{Seed: r.OptInt("seed"), Field: r.OptString("field")}
	if err := r.Err(); err != nil {
		return nil, err
	}
	f.Filter, f.Weight, err = readModifiers(in.Parent)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// FieldValueFactorFunction scores by a numeric document field.
type FieldValueFactorFunction struct {
	Field    string
	Factor   *float64
	Modifier *string
	Missing  *float64
	Filter   Query
	Weight   *float64
}

func (*FieldValueFactorFunction) FunctionType() FunctionType { return FunctionFieldValueFactor }
func (*FieldValueFactorFunction) isScoreFunction()           {}

func (f *FieldValueFactorFunction) EncodeBody(w *codec.Writer) error {
	w.Field("field", f.Field).OptFloat("factor", f.Factor)
	w.OptString("modifier", f.Modifier).OptFloat("missing", f.Missing)
	return w.Err()
}

func (f *FieldValueFactorFunction) MarshalJSON() ([]byte, error) {
	return marshalFunction(f, f.Filter, f.Weight)
}

func (f *FieldValueFactorFunction) IsEqualTo(other ScoreFunction) bool {
	return codec.EqualAs(f, other)
}

func decodeFieldValueFactor(in codec.Input) (ScoreFunction, error) {
	r, err := in.Object()
	if err != nil {
		return nil, err
	}
	f := &FieldValueFactorFunction{
		Field:    r.String("field"),
		Factor:   r.OptFloat("factor"),
		Modifier: r.OptString("modifier"),
		Missing:  r.OptFloat("missing"),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	f.Filter, f.Weight, err = readModifiers(in.Parent)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// DecayFunction scores by distance from Origin. Kind selects gauss, linear
// or exp.
type DecayFunction struct {
	Kind           FunctionType
	Field          string
	Origin         any
	Scale          any
	Offset         any
	Decay          *float64
	MultiValueMode *string
	Filter         Query
	Weight         *float64
}

func (f *DecayFunction) FunctionType() FunctionType { return f.Kind }
func (*DecayFunction) isScoreFunction()             {}

func (f *DecayFunction) EncodeBody(w *codec.Writer) error {
	w.Object(f.Field, func(o *codec.Writer) error {
		o.OptValue("origin", f.Origin).Field("scale", f.Scale).OptValue("offset", f.Offset)
		o.OptFloat("decay", f.Decay)
		return o.Err()
	})
	w.OptString("multi_value_mode", f.MultiValueMode)
	return w.Err()
}

func (f *DecayFunction) MarshalJSON() ([]byte, error) {
	return marshalFunction(f, f.Filter, f.Weight)
}

func (f *DecayFunction) IsEqualTo(other ScoreFunction) bool { return codec.EqualAs(f, other) }

func decodeDecay(in codec.Input) (ScoreFunction, error) {
	r, err := in.Object()
	if err != nil {
		return nil, err
	}
	field, raw := splitField(r, "multi_value_mode")
	f := &DecayFunction{Kind: FunctionType(in.Tag), Field: field, MultiValueMode: r.OptString("multi_value_mode")}
	if err := r.Err(); err != nil {
		return nil, err
	}
	params, err := codec.NewReader(raw)
	if err != nil {
		return nil, err
	}
	f.Origin = params.OptValue("origin")
	params.Decode("scale", &f.Scale)
	f.Offset = params.OptValue("offset")
	f.Decay = params.OptFloat("decay")
	if err := params.Err(); err != nil {
		return nil, err
	}
	f.Filter, f.Weight, err = readModifiers(in.Parent)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// WeightFunction multiplies the score by Weight, optionally only for
// documents matching Filter.
type WeightFunction struct {
	Weight float64
	Filter Query
}

func (*WeightFunction) FunctionType() FunctionType { return FunctionWeight }
func (*WeightFunction) isScoreFunction()           {}

// EncodeBody writes nothing: a weight function is made only of siblings.
func (*WeightFunction) EncodeBody(*codec.Writer) error { return nil }

func (f *WeightFunction) MarshalJSON() ([]byte, error) {
	w := codec.NewWriter()
	writeModifiers(w, f.Filter, &f.Weight)
	return w.Bytes()
}

func (f *WeightFunction) IsEqualTo(other ScoreFunction) bool { return codec.EqualAs(f, other) }

func decodeWeight(in codec.Input) (ScoreFunction, error) {
	filter, weight, err := readModifiers(in.Parent)
	if err != nil {
		return nil, err
	}
	if weight == nil {
		return nil, domain.NewMissingRequiredField("weight")
	}
	return &WeightFunction{Weight: *weight, Filter: filter}, nil
}

// FunctionScoreQuery rescores the documents matched by Query.
type FunctionScoreQuery struct {
	Query     Query
	Functions []ScoreFunction
	ScoreMode *string
	BoostMode *string
	MaxBoost  *float64
	MinScore  *float64
	Boost     *float64
	QueryName *string
}

func (*FunctionScoreQuery) Type() Type { return TypeFunctionScore }
func (*FunctionScoreQuery) isQuery()   {}

func (q *FunctionScoreQuery) EncodeBody(w *codec.Writer) error {
	if q.Query != nil {
		w.Field("query", q.Query)
	}
	if len(q.Functions) > 0 {
		w.Field("functions", q.Functions)
	}
	w.OptString("score_mode", q.ScoreMode).OptString("boost_mode", q.BoostMode)
	w.OptFloat("max_boost", q.MaxBoost).OptFloat("min_score", q.MinScore)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *FunctionScoreQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *FunctionScoreQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeFunctionScore(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *FunctionScoreQuery {
		c := readCommon(r)
		q := &FunctionScoreQuery{
			Query:     optQuery(r, "query"),
			ScoreMode: r.OptString("score_mode"),
			BoostMode: r.OptString("boost_mode"),
			MaxBoost:  r.OptFloat("max_boost"),
			MinScore:  r.OptFloat("min_score"),
			Boost:     c.boost,
			QueryName: c.name,
		}
		fns, err := functionRegistry.DecodeList(r.Elements("functions"))
		if err != nil {
			r.Fail(err)
		}
		q.Functions = fns
		return q
	})
}

// FunctionScoreBuilder builds a FunctionScoreQuery.
type FunctionScoreBuilder struct{ q FunctionScoreQuery }

func NewFunctionScoreBuilder() *FunctionScoreBuilder { return &FunctionScoreBuilder{} }

func (b *FunctionScoreBuilder) Query(q Query) *FunctionScoreBuilder { b.q.Query = q; return b }
func (b *FunctionScoreBuilder) Functions(fs ...ScoreFunction) *FunctionScoreBuilder {
	b.q.Functions = append(b.q.Functions, fs...)
	return b
}
func (b *FunctionScoreBuilder) ScoreMode(m string) *FunctionScoreBuilder { b.q.ScoreMode = &m; return b }
func (b *FunctionScoreBuilder) BoostMode(m string) *FunctionScoreBuilder { b.q.BoostMode = &m; return b }
func (b *FunctionScoreBuilder) MaxBoost(v float64) *FunctionScoreBuilder { b.q.MaxBoost = &v; return b }
func (b *FunctionScoreBuilder) MinScore(v float64) *FunctionScoreBuilder { b.q.MinScore = &v; return b }

// Build requires a query or at least one function.
func (b *FunctionScoreBuilder) Build() (*FunctionScoreQuery, error) {
	var v domain.Validator
	if err := v.AtLeastOne([]string{"query", "functions"}, b.q.Query != nil, len(b.q.Functions) > 0).Err(); err != nil {
		return nil, err
	}
	q := b.q
	q.Functions = slices.Clone(b.q.Functions)
	return &q, nil
}

// DecayBuilder builds a DecayFunction.
type DecayBuilder struct{ f DecayFunction }

// NewDecayBuilder starts a decay function of the given kind (gauss, linear or exp).
func NewDecayBuilder(kind FunctionType) *DecayBuilder {
	return &DecayBuilder{f: DecayFunction{Kind: kind}}
}

func (b *DecayBuilder) Field(f string) *DecayBuilder          { b.f.Field = f; return b }
func (b *DecayBuilder) Origin(v any) *DecayBuilder            { b.f.Origin = v; return b }
func (b *DecayBuilder) Scale(v any) *DecayBuilder             { b.f.Scale = v; return b }
func (b *DecayBuilder) Offset(v any) *DecayBuilder            { b.f.Offset = v; return b }
func (b *DecayBuilder) Decay(v float64) *DecayBuilder         { b.f.Decay = &v; return b }
func (b *DecayBuilder) MultiValueMode(m string) *DecayBuilder { b.f.MultiValueMode = &m; return b }
func (b *DecayBuilder) Filter(q Query) *DecayBuilder          { b.f.Filter = q; return b }
func (b *DecayBuilder) Weight(v float64) *DecayBuilder        { b.f.Weight = &v; return b }

func (b *DecayBuilder) Build() (*DecayFunction, error) {
	var v domain.Validator
	v.RequiredString("field", b.f.Field).Required("scale", b.f.Scale != nil)
	switch b.f.Kind {
	case FunctionGauss, FunctionLinear, FunctionExp:
	default:
		v.Check(&domain.InvalidFieldError{Field: "kind", Reason: "must be gauss, linear or exp"})
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	f := b.f
	return &f, nil
}

// FieldValueFactorBuilder builds a FieldValueFactorFunction.
type FieldValueFactorBuilder struct{ f FieldValueFactorFunction }

func NewFieldValueFactorBuilder() *FieldValueFactorBuilder { return &FieldValueFactorBuilder{} }

func (b *FieldValueFactorBuilder) Field(f string) *FieldValueFactorBuilder { b.f.Field = f; return b }
func (b *FieldValueFactorBuilder) Factor(v float64) *FieldValueFactorBuilder {
	b.f.Factor = &v
	return b
}
func (b *FieldValueFactorBuilder) Modifier(m string) *FieldValueFactorBuilder {
	b.f.Modifier = &m
	return b
}
func (b *FieldValueFactorBuilder) Missing(v float64) *FieldValueFactorBuilder {
	b.f.Missing = &v
	return b
}
func (b *FieldValueFactorBuilder) Filter(q Query) *FieldValueFactorBuilder { b.f.Filter = q; return b }
func (b *FieldValueFactorBuilder) Weight(v float64) *FieldValueFactorBuilder {
	b.f.Weight = &v
	return b
}

func (b *FieldValueFactorBuilder) Build() (*FieldValueFactorFunction, error) {
	var v domain.Validator
	if err := v.RequiredString("field", b.f.Field).Err(); err != nil {
		return nil, err
	}
	f := b.f
	return &f, nil
}
