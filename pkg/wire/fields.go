package wire

import (
	"fmt"
	"time"

	"github.com/pulselog/telemetry-gateway/pkg/model"
)

// fieldSetter assigns a decoded native value to one field of target, which is
// always the pointer type produced by the owning entitySpec's newInstance.
type fieldSetter func(target, value any) error

// entitySpec is the compile-time field table for one entity kind: a factory
// for a default instance plus setters keyed by lower-cased wire field name.
// The tables replace runtime reflection while keeping the case-insensitive
// key-matching contract.
type entitySpec struct {
	newInstance func() any
	fields      map[string]fieldSetter
}

var entitySpecs = map[Kind]*entitySpec{
	KindAccount: {
		newInstance: func() any { return &model.Account{} },
		fields: map[string]fieldSetter{
			"id": func(t, v any) error {
				return setInt64(&t.(*model.Account).ID, v)
			},
			"email": func(t, v any) error {
				return setString(&t.(*model.Account).Email, v)
			},
			"name": func(t, v any) error {
				return setString(&t.(*model.Account).Name, v)
			},
			"phonenumber": func(t, v any) error {
				return setString(&t.(*model.Account).PhoneNumber, v)
			},
			"lastcontacttime": func(t, v any) error {
				return setTime(&t.(*model.Account).LastContactTime, v)
			},
			"emailtoken": func(t, v any) error {
				return setString(&t.(*model.Account).EmailToken, v)
			},
			"status": func(t, v any) error {
				return setInt64(&t.(*model.Account).Status, v)
			},
			"notification": func(t, v any) error {
				return setBool(&t.(*model.Account).Notification, v)
			},
			"description": func(t, v any) error {
				return setString(&t.(*model.Account).Description, v)
			},
			// Applications arrive as a List-tagged value, which the decoder
			// rejects, so in practice this field degrades to its default.
			"applications": func(t, v any) error {
				apps, err := applicationSlice(v)
				if err != nil {
					return err
				}
				t.(*model.Account).Applications = apps
				return nil
			},
		},
	},
	KindApplication: {
		newInstance: func() any { return &model.Application{} },
		fields: map[string]fieldSetter{
			"id": func(t, v any) error {
				return setInt64(&t.(*model.Application).ID, v)
			},
			"name": func(t, v any) error {
				return setString(&t.(*model.Application).Name, v)
			},
			// The encoder writes the owning account as its bare id to break
			// the back-reference cycle; a full Account object is accepted
			// too for requests originating from the account tooling.
			"account": func(t, v any) error {
				app := t.(*model.Application)
				switch acct := v.(type) {
				case int64:
					app.AccountID = acct
					return nil
				case *model.Account:
					app.Account = acct
					app.AccountID = acct.ID
					return nil
				default:
					return fmt.Errorf("wire: account field holds %T, want Long or Account", v)
				}
			},
			"releasedate": func(t, v any) error {
				return setTime(&t.(*model.Application).ReleaseDate, v)
			},
			"announcement": func(t, v any) error {
				return setString(&t.(*model.Application).Announcement, v)
			},
		},
	},
	KindCarrier: {
		newInstance: func() any { return &model.Carrier{} },
		fields: map[string]fieldSetter{
			"id": func(t, v any) error {
				return setInt64(&t.(*model.Carrier).ID, v)
			},
			"name": func(t, v any) error {
				return setString(&t.(*model.Carrier).Name, v)
			},
			"gateway": func(t, v any) error {
				return setString(&t.(*model.Carrier).TextGateway, v)
			},
			"textgateway": func(t, v any) error {
				return setString(&t.(*model.Carrier).TextGateway, v)
			},
		},
	},
	KindEvent: {
		newInstance: func() any { return &model.Event{} },
		fields: map[string]fieldSetter{
			"id": func(t, v any) error {
				return setInt64(&t.(*model.Event).ID, v)
			},
			"recordtime": func(t, v any) error {
				return setTime(&t.(*model.Event).RecordTime, v)
			},
			"description": func(t, v any) error {
				return setString(&t.(*model.Event).Description, v)
			},
			"data": func(t, v any) error {
				return setString(&t.(*model.Event).Data, v)
			},
			"latitude": func(t, v any) error {
				return setFloat64(&t.(*model.Event).Latitude, v)
			},
			"longitude": func(t, v any) error {
				return setFloat64(&t.(*model.Event).Longitude, v)
			},
			"application": func(t, v any) error {
				app, ok := v.(*model.Application)
				if !ok {
					return fmt.Errorf("wire: application field holds %T, want Application", v)
				}
				t.(*model.Event).Application = app
				return nil
			},
		},
	},
	KindLocationFix: {
		newInstance: func() any { return &model.LocationFix{} },
		fields: map[string]fieldSetter{
			"id": func(t, v any) error {
				return setInt64(&t.(*model.LocationFix).ID, v)
			},
			"latitude": func(t, v any) error {
				return setFloat64(&t.(*model.LocationFix).Latitude, v)
			},
			"longitude": func(t, v any) error {
				return setFloat64(&t.(*model.LocationFix).Longitude, v)
			},
			"accuracy": func(t, v any) error {
				return setFloat64(&t.(*model.LocationFix).Accuracy, v)
			},
			"timeoffix": func(t, v any) error {
				return setTime(&t.(*model.LocationFix).TimeOfFix, v)
			},
		},
	},
	KindPhone: {
		newInstance: func() any { return &model.Phone{} },
		fields: map[string]fieldSetter{
			"id": func(t, v any) error {
				return setInt64(&t.(*model.Phone).ID, v)
			},
			"clientid": func(t, v any) error {
				return setString(&t.(*model.Phone).ClientID, v)
			},
			"version": func(t, v any) error {
				return setString(&t.(*model.Phone).Version, v)
			},
		},
	},
	// Provisioning field names on the wire are dynamic parameter names, not
	// declared fields, so they fall through the unmatched-key path and the
	// decode yields an empty Provisioning instance.
	KindProvisioning: {
		newInstance: func() any { return &model.Provisioning{} },
		fields: map[string]fieldSetter{
			"id": func(t, v any) error {
				return setInt64(&t.(*model.Provisioning).ID, v)
			},
		},
	},
	KindProvisioningParameter: {
		newInstance: func() any { return &model.ProvisioningParameter{} },
		fields: map[string]fieldSetter{
			"id": func(t, v any) error {
				return setInt64(&t.(*model.ProvisioningParameter).ID, v)
			},
			"name": func(t, v any) error {
				return setString(&t.(*model.ProvisioningParameter).Name, v)
			},
			"value": func(t, v any) error {
				return setString(&t.(*model.ProvisioningParameter).Value, v)
			},
			"type": func(t, v any) error {
				return setString(&t.(*model.ProvisioningParameter).Type, v)
			},
			"active": func(t, v any) error {
				return setBool(&t.(*model.ProvisioningParameter).Active, v)
			},
			"versionrange": func(t, v any) error {
				return setString(&t.(*model.ProvisioningParameter).VersionRange, v)
			},
		},
	},
	KindCounter: {
		newInstance: func() any { return &model.Counter{} },
		fields: map[string]fieldSetter{
			"id": func(t, v any) error {
				return setInt64(&t.(*model.Counter).ID, v)
			},
			"name": func(t, v any) error {
				return setString(&t.(*model.Counter).Name, v)
			},
			"count": func(t, v any) error {
				return setInt64(&t.(*model.Counter).Count, v)
			},
			"asof": func(t, v any) error {
				return setTime(&t.(*model.Counter).AsOf, v)
			},
		},
	},
}

func setString(dst *string, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("wire: field holds %T, want String", v)
	}
	*dst = s
	return nil
}

// setInt64 accepts both Long and Integer wire kinds; clients are loose about
// which numeric tag they use for id fields.
func setInt64(dst *int64, v any) error {
	switch n := v.(type) {
	case int64:
		*dst = n
	case int:
		*dst = int64(n)
	default:
		return fmt.Errorf("wire: field holds %T, want Long or Integer", v)
	}
	return nil
}

func setFloat64(dst *float64, v any) error {
	switch f := v.(type) {
	case float64:
		*dst = f
	case int64:
		*dst = float64(f)
	case int:
		*dst = float64(f)
	default:
		return fmt.Errorf("wire: field holds %T, want Double", v)
	}
	return nil
}

func setBool(dst *bool, v any) error {
	b, ok := v.(bool)
	if !ok {
		return fmt.Errorf("wire: field holds %T, want Boolean", v)
	}
	*dst = b
	return nil
}

func setTime(dst *time.Time, v any) error {
	t, ok := v.(time.Time)
	if !ok {
		return fmt.Errorf("wire: field holds %T, want Date", v)
	}
	*dst = t
	return nil
}

func applicationSlice(v any) ([]*model.Application, error) {
	set, ok := v.(*Set)
	if !ok {
		return nil, fmt.Errorf("wire: field holds %T, want a collection of Application", v)
	}
	apps := make([]*model.Application, 0, set.Len())
	for _, elem := range set.Values() {
		app, ok := elem.(*model.Application)
		if !ok {
			return nil, fmt.Errorf("wire: collection element holds %T, want Application", elem)
		}
		apps = append(apps, app)
	}
	return apps, nil
}
