// internal/mapper/application.go
package mapper

import (
	"strings"
	"time"

	"homecare-admin/internal/models"
	"homecare-admin/internal/normalize"
)

// Application maps a raw worker application into its canonical row. The
// function is total: any shape the backend has ever produced yields a row,
// with documented fallbacks for every unresolvable field.
func Application(raw map[string]interface{}) *models.ApplicationRow {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	info := firstSection(raw, "info", "profile", "information", "personal_information")
	work := firstSection(raw, "work", "details", "work_details", "work_information")
	rate := firstSection(raw, "rate", "rate_details", "work_rate")

	person := []map[string]interface{}{raw, info}
	workScopes := []map[string]interface{}{raw, work}
	rateScopes := []map[string]interface{}{rate, work, raw}

	firstName := pickString(person, "first_name", "firstName", "fname")
	lastName := pickString(person, "last_name", "lastName", "lname")
	fullName := normalize.FirstNonEmpty(
		pick(person, "full_name", "fullName", "name"),
		joinName(firstName, lastName),
	)

	serviceTypes := normalize.Strings(pick(workScopes,
		"service_types", "serviceTypes", "services", "service_type", "serviceType"))

	primaryService := normalize.FirstNonEmpty(
		pick(workScopes, "primary_service", "primaryService", "main_service"),
		firstOf(serviceTypes),
	)

	jobDetails := pick(workScopes, "job_details", "jobDetails", "service_tasks", "serviceTasks", "tasks")

	taskOrRole := normalize.FirstNonEmpty(
		pick(workScopes, "task_or_role", "taskOrRole"),
		Task(jobDetails, primaryService),
	)

	createdAt := pickString([]map[string]interface{}{raw}, "created_at", "createdAt", "submitted_at", "date_applied")
	email := pickString(person, "email", "email_address", "emailAddress")
	rawContact := pick(person,
		"contact_number", "contactNumber", "phone", "phone_number", "mobile", "mobile_number")
	contact := normalize.PHMobile(rawContact)

	mappedRate := mapRate(rateScopes)
	decision := mapDecision([]map[string]interface{}{raw})

	row := &models.ApplicationRow{
		ID:             pickString([]map[string]interface{}{raw}, "id", "_id", "application_id", "applicationId"),
		RequestGroupID: pickString([]map[string]interface{}{raw, info}, "request_group_id", "requestGroupId", "group_id", "groupId"),

		FirstName: firstName,
		LastName:  lastName,
		FullName:  fullName,
		Age:       mapAge(person),

		Email:          email,
		ContactNumber:  contact,
		ContactDisplay: normalize.FormatPHMobile(rawContact),
		Address:        pickString(person, "address", "home_address", "street"),

		ServiceTypes:       serviceTypes,
		PrimaryService:     primaryService,
		TaskOrRole:         taskOrRole,
		YearsExperience:    pickString(workScopes, "years_experience", "yearsExperience", "experience", "work_experience"),
		ToolsProvided:      normalize.ToBool(pick(workScopes, "tools_provided", "toolsProvided", "has_tools", "own_tools")),
		ServiceDescription: pickString(workScopes, "service_description", "serviceDescription", "description", "work_description"),

		Rate:        mappedRate,
		RateDisplay: mappedRate.Display(),

		Status:          models.ParseStatus(pick([]map[string]interface{}{raw}, "status", "application_status", "applicationStatus")),
		Decision:        decision,
		DecisionDisplay: decision.Display(),

		CreatedAt:        createdAt,
		CreatedAtTS:      normalize.EpochMillis(createdAt),
		CreatedAtDisplay: normalize.FormatDateTime(createdAt),
	}

	if docs := normalize.AsMap(pick([]map[string]interface{}{raw},
		"documents", "docs", "required_documents", "requiredDocuments")); len(docs) > 0 {
		row.Documents = docs
	}

	row.Search = searchText(
		row.FullName,
		row.Email,
		row.PrimaryService,
		row.TaskOrRole,
		strings.Join(row.ServiceTypes, " "),
		row.CreatedAtDisplay,
	)

	return row
}

// Applications maps a raw list, excluding cancelled records at the mapping
// boundary. Cancelled applications have their own dedicated view and never
// reach the pending/approved/declined tabs.
func Applications(raws []map[string]interface{}) []*models.ApplicationRow {
	rows := make([]*models.ApplicationRow, 0, len(raws))
	for _, raw := range raws {
		row := Application(raw)
		if row.Status == models.StatusCancelled {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// CancelledApplications keeps only cancelled records, for the dedicated
// cancellation view.
func CancelledApplications(raws []map[string]interface{}) []*models.ApplicationRow {
	rows := make([]*models.ApplicationRow, 0)
	for _, raw := range raws {
		row := Application(raw)
		if row.Status == models.StatusCancelled {
			rows = append(rows, row)
		}
	}
	return rows
}

func mapAge(person []map[string]interface{}) *int {
	if explicit := intPtr(pick(person, "age")); explicit != nil {
		if *explicit >= 0 && *explicit <= 120 {
			return explicit
		}
		return nil
	}
	dob := pick(person, "date_of_birth", "dateOfBirth", "birth_date", "birthdate")
	if age, ok := normalize.AgeFromBirthDate(dob, time.Now()); ok {
		return &age
	}
	return nil
}

func firstOf(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}
