package db

import "gorm.io/gorm"

type Repositories struct {
	Users          *UserRepository
	Couples        *CoupleRepository
	Medications    *MedicationRepository
	MedicationLogs *MedicationLogRepository
	Moods          *MoodRepository
	Sleep          *SleepRepository
	Calendar       *CalendarRepository
	Todos          *TodoRepository
	Activities     *ActivityRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(database),
		Couples:        NewCoupleRepository(database),
		Medications:    NewMedicationRepository(database),
		MedicationLogs: NewMedicationLogRepository(database),
		Moods:          NewMoodRepository(database),
		Sleep:          NewSleepRepository(database),
		Calendar:       NewCalendarRepository(database),
		Todos:          NewTodoRepository(database),
		Activities:     NewActivityRepository(database),
	}
}
