package validations

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	applicationdomain "github.com/sorogrupos/jobcast/applications/domain"
	groupdomain "github.com/sorogrupos/jobcast/groups/domain"
	jobdomain "github.com/sorogrupos/jobcast/jobs/domain"
	pkgError "github.com/sorogrupos/jobcast/pkg/error"
)

func ValidateJob(ctx context.Context, job jobdomain.Job) error {
	err := validation.ValidateStructWithContext(ctx, &job,
		validation.Field(&job.Title, validation.Required, validation.Length(2, 200)),
		validation.Field(&job.Contacts, validation.Each(validation.By(validContact))),
		validation.Field(&job.Status, validation.When(job.Status != "", validation.In(jobdomain.JobActive, jobdomain.JobPaused))),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func validContact(value interface{}) error {
	contact, ok := value.(jobdomain.Contact)
	if !ok {
		return errors.New("must be a contact")
	}
	if !jobdomain.ValidContactType(contact.Type) {
		return errors.New("unknown contact type")
	}
	if contact.Value == "" {
		return errors.New("contact value is required")
	}
	if contact.Type == jobdomain.ContactEmail {
		return validation.Validate(contact.Value, is.EmailFormat)
	}
	return nil
}

func ValidateGroup(ctx context.Context, group groupdomain.Group) error {
	err := validation.ValidateStructWithContext(ctx, &group,
		validation.Field(&group.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&group.GroupID, validation.Required),
		validation.Field(&group.MemberCount, validation.Min(0)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateApplication(ctx context.Context, app applicationdomain.Application) error {
	err := validation.ValidateStructWithContext(ctx, &app,
		validation.Field(&app.JobID, validation.Required),
		validation.Field(&app.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&app.Email, validation.When(app.Email != "", is.EmailFormat)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
