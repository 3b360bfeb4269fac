package validations

import (
	"context"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	broadcastusecase "github.com/sorogrupos/jobcast/broadcast/usecase"
	pkgError "github.com/sorogrupos/jobcast/pkg/error"
)

var (
	dateRule = validation.Match(regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)).Error("must be YYYY-MM-DD")
	timeRule = validation.Match(regexp.MustCompile(`^\d{2}:\d{2}$`)).Error("must be HH:MM")
)

type RescheduleRequest struct {
	BatchID string `json:"batch_id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

func ValidateReschedule(ctx context.Context, request RescheduleRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.BatchID, validation.Required),
		validation.Field(&request.Date, validation.Required, dateRule),
		validation.Field(&request.Time, validation.Required, timeRule),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

type AddGroupsRequest struct {
	BatchID  string   `json:"batch_id"`
	GroupIDs []string `json:"group_ids"`
}

func ValidateAddGroups(ctx context.Context, request AddGroupsRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.BatchID, validation.Required),
		validation.Field(&request.GroupIDs, validation.Required, validation.Length(1, 0)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateSendNow(ctx context.Context, request broadcastusecase.SendNowRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.JobIDs, validation.Required, validation.Length(1, broadcastusecase.MaxJobsPerBroadcast)),
		validation.Field(&request.GroupIDs, validation.Required, validation.Length(1, 0)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateCompose(ctx context.Context, request broadcastusecase.ComposeRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.JobIDs, validation.Required, validation.Length(1, broadcastusecase.MaxJobsPerBroadcast)),
		validation.Field(&request.GroupIDs, validation.Required, validation.Length(1, 0)),
		validation.Field(&request.Dates, validation.Required, validation.Each(dateRule)),
		validation.Field(&request.Time, validation.Required, timeRule),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
