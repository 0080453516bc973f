package wire

import (
	"errors"
	"fmt"
	"time"

	"github.com/pulselog/telemetry-gateway/pkg/model"
)

// ErrUnsupportedType is wrapped by EncodeValue when a value's concrete type
// is outside the closed vocabulary.
var ErrUnsupportedType = errors.New("wire: cannot encode value")

// EncodeValue converts a native value into its tagged wire form. Dispatch is
// by concrete type in a fixed priority order: domain entities first, then
// ordered list, unordered set, bool, string, int64, date, float64, int. The
// arm order is intentional tie-breaking and must not be reordered.
//
// A nil input yields a nil (absent) value with no error. An unmatched type
// fails with ErrUnsupportedType.
func EncodeValue(v any) (*TaggedValue, error) {
	if v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case model.Entity:
		return encodeEntity(x)
	case []any:
		return encodeList(x)
	case *Set:
		return encodeSet(x)
	case bool:
		return encodeBool(x), nil
	case string:
		return encodeString(x), nil
	case int64:
		return encodeLong(x), nil
	case time.Time:
		return encodeDate(x), nil
	case float64:
		return encodeDouble(x), nil
	case int:
		return encodeInteger(x), nil
	default:
		return nil, fmt.Errorf("%w of type %T", ErrUnsupportedType, v)
	}
}

// encodeEntity dispatches on the concrete entity kind, again in fixed order.
// A nil entity pointer is an absent value.
func encodeEntity(e model.Entity) (*TaggedValue, error) {
	switch x := e.(type) {
	case *model.Carrier:
		return encodeCarrier(x), nil
	case *model.Event:
		return encodeEvent(x)
	case *model.Application:
		return encodeApplication(x), nil
	case *model.Account:
		return encodeAccount(x), nil
	case *model.Phone:
		return encodePhone(x), nil
	case *model.Provisioning:
		return encodeProvisioning(x), nil
	case *model.ProvisioningParameter:
		return encodeProvisioningParameter(x), nil
	case *model.LocationFix:
		return encodeLocationFix(x), nil
	case *model.Counter:
		return encodeCounter(x), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized entity type %T", ErrUnsupportedType, e)
	}
}

func wrapped(kind Kind, value any) *TaggedValue {
	return &TaggedValue{Tag: TagFor(kind), Value: value}
}

func flat(kind Kind) *TaggedValue {
	return &TaggedValue{Tag: TagFor(kind), Fields: make(map[string]*TaggedValue)}
}

func encodeInteger(n int) *TaggedValue {
	return wrapped(KindInteger, n)
}

func encodeLong(n int64) *TaggedValue {
	return wrapped(KindLong, n)
}

func encodeDouble(f float64) *TaggedValue {
	return wrapped(KindDouble, f)
}

// encodeBool emits the literal strings "true"/"false" rather than a native
// boolean. Deployed clients parse exactly this form; keep it verbatim.
func encodeBool(b bool) *TaggedValue {
	if b {
		return wrapped(KindBoolean, "true")
	}
	return wrapped(KindBoolean, "false")
}

func encodeString(s string) *TaggedValue {
	return wrapped(KindString, s)
}

func encodeDate(t time.Time) *TaggedValue {
	if t.IsZero() {
		return nil
	}
	return wrapped(KindDate, t.Format(DateLayout))
}

// encodeList emits the ordered List tag. Note the decoder has no List branch;
// lists appear only in responses.
func encodeList(items []any) (*TaggedValue, error) {
	if items == nil {
		return nil, nil
	}
	elems := make([]*TaggedValue, 0, len(items))
	for _, item := range items {
		ev, err := EncodeValue(item)
		if err != nil {
			return nil, err
		}
		elems = append(elems, ev)
	}
	return wrapped(KindList, elems), nil
}

func encodeSet(s *Set) (*TaggedValue, error) {
	if s == nil {
		return nil, nil
	}
	elems := make([]*TaggedValue, 0, s.Len())
	for _, item := range s.Values() {
		ev, err := EncodeValue(item)
		if err != nil {
			return nil, err
		}
		elems = append(elems, ev)
	}
	return wrapped(KindSet, elems), nil
}

// Entity encoders project a fixed field set per kind rather than dumping all
// fields; back-references are truncated to bare ids so the wire graph stays
// acyclic. A nested encode failure produces a partially filled object rather
// than failing the whole response.

func encodeCarrier(c *model.Carrier) *TaggedValue {
	if c == nil {
		return nil
	}
	tv := flat(KindCarrier)
	tv.Fields["id"] = encodeLong(c.ID)
	tv.Fields["name"] = encodeString(c.Name)
	tv.Fields["gateway"] = encodeString(c.TextGateway)
	return tv
}

func encodeEvent(e *model.Event) (*TaggedValue, error) {
	if e == nil {
		return nil, nil
	}
	tv := flat(KindEvent)
	tv.Fields["id"] = encodeLong(e.ID)
	tv.Fields["recordTime"] = encodeDate(e.RecordTime)
	tv.Fields["description"] = encodeString(e.Description)
	tv.Fields["data"] = encodeString(e.Data)
	tv.Fields["latitude"] = encodeDouble(e.Latitude)
	tv.Fields["longitude"] = encodeDouble(e.Longitude)
	app, err := encodeEntity(e.Application)
	if err != nil {
		return tv, nil // partial object
	}
	tv.Fields["application"] = app
	return tv, nil
}

func encodeLocationFix(lf *model.LocationFix) *TaggedValue {
	if lf == nil {
		return nil
	}
	tv := flat(KindLocationFix)
	tv.Fields["id"] = encodeLong(lf.ID)
	tv.Fields["latitude"] = encodeDouble(lf.Latitude)
	tv.Fields["longitude"] = encodeDouble(lf.Longitude)
	tv.Fields["accuracy"] = encodeDouble(lf.Accuracy)
	tv.Fields["timeOfFix"] = encodeDate(lf.TimeOfFix)
	return tv
}

func encodePhone(p *model.Phone) *TaggedValue {
	if p == nil {
		return nil
	}
	tv := flat(KindPhone)
	tv.Fields["id"] = encodeLong(p.ID)
	tv.Fields["clientID"] = encodeString(p.ClientID)
	tv.Fields["version"] = encodeString(p.Version)
	return tv
}

// encodeProvisioning emits a flat map of parameterName -> encoded value,
// active parameters only. Inactive parameters are omitted entirely.
func encodeProvisioning(prov *model.Provisioning) *TaggedValue {
	if prov == nil {
		return nil
	}
	tv := flat(KindProvisioning)
	for _, p := range prov.Parameters {
		if p == nil || !p.Active || p.Name == "" {
			continue
		}
		tv.Fields[p.Name] = encodeString(p.Value)
	}
	return tv
}

// encodeProvisioningParameter carries only name, value, and type; an inactive
// parameter is absent by design, not an error.
func encodeProvisioningParameter(p *model.ProvisioningParameter) *TaggedValue {
	if p == nil || !p.Active {
		return nil
	}
	tv := flat(KindProvisioningParameter)
	tv.Fields["name"] = encodeString(p.Name)
	tv.Fields["value"] = encodeString(p.Value)
	tv.Fields["type"] = encodeString(p.Type)
	return tv
}

func encodeAccount(a *model.Account) *TaggedValue {
	if a == nil {
		return nil
	}
	tv := flat(KindAccount)
	tv.Fields["id"] = encodeLong(a.ID)
	tv.Fields["email"] = encodeString(a.Email)
	tv.Fields["name"] = encodeString(a.Name)
	tv.Fields["phoneNumber"] = encodeString(a.PhoneNumber)
	tv.Fields["lastContactTime"] = encodeDate(a.LastContactTime)
	tv.Fields["emailToken"] = encodeString(a.EmailToken)
	tv.Fields["status"] = encodeLong(a.Status)
	tv.Fields["notification"] = encodeBool(a.Notification)
	tv.Fields["description"] = encodeString(a.Description)
	if a.Applications != nil {
		items := make([]any, 0, len(a.Applications))
		for _, app := range a.Applications {
			items = append(items, app)
		}
		apps, err := encodeList(items)
		if err != nil {
			return tv // partial object
		}
		tv.Fields["applications"] = apps
	}
	return tv
}

// encodeApplication truncates the owning account to its bare id so the
// account<->application back-reference never recurses on the wire.
func encodeApplication(app *model.Application) *TaggedValue {
	if app == nil {
		return nil
	}
	tv := flat(KindApplication)
	tv.Fields["id"] = encodeLong(app.ID)
	tv.Fields["name"] = encodeString(app.Name)
	accountID := app.AccountID
	if app.Account != nil {
		accountID = app.Account.ID
	}
	tv.Fields["account"] = encodeLong(accountID)
	tv.Fields["releaseDate"] = encodeDate(app.ReleaseDate)
	tv.Fields["announcement"] = encodeString(app.Announcement)
	return tv
}

func encodeCounter(c *model.Counter) *TaggedValue {
	if c == nil {
		return nil
	}
	tv := flat(KindCounter)
	tv.Fields["id"] = encodeLong(c.ID)
	tv.Fields["name"] = encodeString(c.Name)
	tv.Fields["count"] = encodeLong(c.Count)
	tv.Fields["asOf"] = encodeDate(c.AsOf)
	return tv
}
