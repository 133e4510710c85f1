package migrations

import (
	"github.com/pocketbase/pocketbase/core"
)

func init() {
	core.AppMigrations.Register(func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		// Notification channel handle (Telegram chat id)
		collection.Fields.Add(&core.TextField{
			Id:     "usr_fcm_token",
			Name:   "fcm_token",
			Max:    255,
			Hidden: true,
		})

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection.Fields.RemoveById("usr_fcm_token")

		return app.Save(collection)
	})
}
