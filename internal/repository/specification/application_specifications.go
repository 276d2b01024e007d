package specification

import "gorm.io/gorm"

type ByApplicantEmail struct {
	Email string
}

func (s ByApplicantEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type BySubmissionId struct {
	Id string
}

func (s BySubmissionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.Id)
}
