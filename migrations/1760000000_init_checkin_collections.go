package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"photo-checkin/internal/models"
)

func init() {
	core.AppMigrations.Register(func(app core.App) error {
		events := core.NewBaseCollection("events")
		events.Fields.Add(
			&core.TextField{Id: "evt_name", Name: "name", Max: 255},
			&core.DateField{Id: "evt_datetime", Name: "event_date_time", Required: true},
			&core.NumberField{Id: "evt_offset", Name: "required_arrival_time_offset_minutes", Min: types.Pointer(0.0), Max: types.Pointer(float64(models.MaxWindowMinutes)), OnlyInt: true},
			&core.NumberField{Id: "evt_grace", Name: "grace_period_minutes", Min: types.Pointer(0.0), Max: types.Pointer(float64(models.MaxWindowMinutes)), OnlyInt: true},
			&core.NumberField{Id: "evt_deduction", Name: "late_deduction_amount", Min: types.Pointer(0.0)},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)
		if err := app.Save(events); err != nil {
			return err
		}

		photographers := core.NewBaseCollection("photographers_data")
		photographers.Fields.Add(
			&core.NumberField{Id: "pgr_balance", Name: "balance"},
			&core.NumberField{Id: "pgr_total", Name: "total_deductions", Min: types.Pointer(0.0)},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)
		if err := app.Save(photographers); err != nil {
			return err
		}

		attendance := core.NewBaseCollection("attendance_records")
		attendance.Fields.Add(
			&core.TextField{Id: "att_event", Name: "event_id", Max: 64},
			&core.TextField{Id: "att_photographer", Name: "photographer_id", Max: 64},
			&core.SelectField{Id: "att_type", Name: "type", Values: []string{"check_in", "check_out"}, MaxSelect: 1, Required: true},
			&core.DateField{Id: "att_checkin", Name: "check_in_timestamp"},
			&core.BoolField{Id: "att_late", Name: "is_late"},
			&core.NumberField{Id: "att_deduction", Name: "late_deduction_applied", Min: types.Pointer(0.0)},
			&core.BoolField{Id: "att_committed", Name: "deduction_committed"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)
		attendance.AddIndex("idx_attendance_photographer", false, "photographer_id, check_in_timestamp", "")
		return app.Save(attendance)
	}, func(app core.App) error {
		for _, name := range []string{"attendance_records", "photographers_data", "events"} {
			collection, err := app.FindCollectionByNameOrId(name)
			if err != nil {
				continue
			}
			if err := app.Delete(collection); err != nil {
				return err
			}
		}
		return nil
	})
}
