// internal/mapper/request.go
package mapper

import (
	"homecare-admin/internal/documents"
	"homecare-admin/internal/models"
	"homecare-admin/internal/normalize"
)

// ServiceRequest maps a raw client service request into its canonical row.
func ServiceRequest(raw map[string]interface{}) *models.RequestRow {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	info := firstSection(raw, "info", "information", "client_info", "requester")
	details := firstSection(raw, "details", "service_details", "request_details", "work")
	rate := firstSection(raw, "rate", "rate_details")

	person := []map[string]interface{}{raw, info}
	detailScopes := []map[string]interface{}{raw, details}
	rateScopes := []map[string]interface{}{rate, details, raw}

	firstName := pickString(person, "first_name", "firstName", "fname")
	lastName := pickString(person, "last_name", "lastName", "lname")
	fullName := normalize.FirstNonEmpty(
		pick(person, "full_name", "fullName", "name"),
		joinName(firstName, lastName),
	)

	serviceType := pickString(detailScopes, "service_type", "serviceType", "service", "category")
	taskOrRole := normalize.FirstNonEmpty(
		pick(detailScopes, "task_or_role", "taskOrRole", "task"),
		Task(pick(detailScopes, "job_details", "jobDetails", "tasks"), serviceType),
	)

	preferredDate := pickString(detailScopes, "preferred_date", "preferredDate", "schedule_date", "date")
	createdAt := pickString([]map[string]interface{}{raw}, "created_at", "createdAt", "submitted_at")

	rawContact := pick(person, "contact_number", "contactNumber", "phone", "phone_number", "mobile")
	mappedRate := mapRate(rateScopes)
	decision := mapDecision([]map[string]interface{}{raw})

	row := &models.RequestRow{
		ID:             pickString([]map[string]interface{}{raw}, "id", "_id", "request_id", "requestId"),
		RequestGroupID: pickString([]map[string]interface{}{raw, info}, "request_group_id", "requestGroupId", "group_id", "groupId"),

		FirstName:     firstName,
		LastName:      lastName,
		FullName:      fullName,
		Email:          pickString(person, "email", "email_address", "emailAddress"),
		ContactNumber:  normalize.PHMobile(rawContact),
		ContactDisplay: normalize.FormatPHMobile(rawContact),
		Address:        pickString(person, "address", "home_address", "street", "location"),

		ServiceType:   serviceType,
		TaskOrRole:    taskOrRole,
		PreferredDate: preferredDate,
		PreferredTime: normalize.FormatTime12h(pickString(detailScopes, "preferred_time", "preferredTime", "time")),
		Urgent:        normalize.ToBool(pick(detailScopes, "urgent", "is_urgent", "isUrgent", "urgency")),
		ToolsProvided: normalize.ToBool(pick(detailScopes, "tools_provided", "toolsProvided", "has_tools")),
		Description:   pickString(detailScopes, "description", "service_description", "details_text", "notes"),
		ImageURL:      documents.URL(pick(detailScopes, "image_url", "imageUrl", "image", "photo")),

		Rate:        mappedRate,
		RateDisplay: mappedRate.Display(),

		Status:          models.ParseStatus(pick([]map[string]interface{}{raw}, "status", "request_status", "requestStatus")),
		Decision:        decision,
		DecisionDisplay: decision.Display(),

		CreatedAt:        createdAt,
		CreatedAtTS:      normalize.EpochMillis(createdAt),
		CreatedAtDisplay: normalize.FormatDateTime(createdAt),
	}

	row.Search = searchText(
		row.FullName,
		row.Email,
		row.ServiceType,
		row.TaskOrRole,
		normalize.FormatDateMMDDYYYY(row.PreferredDate),
		row.CreatedAtDisplay,
	)

	return row
}

// ServiceRequests maps a raw list, excluding cancelled records at the
// mapping boundary.
func ServiceRequests(raws []map[string]interface{}) []*models.RequestRow {
	rows := make([]*models.RequestRow, 0, len(raws))
	for _, raw := range raws {
		row := ServiceRequest(raw)
		if row.Status == models.StatusCancelled {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// MergeGroupDetail folds a lazily fetched by-group detail object into an
// already-displayed row. Only fields the detail actually carries overwrite
// the row; list-level values stay otherwise.
func MergeGroupDetail(row *models.RequestRow, detail map[string]interface{}) *models.RequestRow {
	if len(detail) == 0 {
		return row
	}
	merged := ServiceRequest(detail)
	if merged.Description != "" {
		row.Description = merged.Description
	}
	if merged.ImageURL != "" {
		row.ImageURL = merged.ImageURL
	}
	if merged.Address != "" {
		row.Address = merged.Address
	}
	if merged.ContactNumber != "" {
		row.ContactNumber = merged.ContactNumber
		row.ContactDisplay = merged.ContactDisplay
	}
	if merged.Rate.Type != "" {
		row.Rate = merged.Rate
		row.RateDisplay = merged.RateDisplay
	}
	return row
}
