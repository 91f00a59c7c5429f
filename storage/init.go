package storage

import (
	"VolunteerHub/storage/database"
	"VolunteerHub/storage/mq"
	"VolunteerHub/storage/redis"
)

// Init brings up the whole storage layer in dependency order.
func Init() error {
	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		return err
	}

	if err := mq.Init(); err != nil {
		return err
	}

	return nil
}
