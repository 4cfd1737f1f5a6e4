package web

import (
	"fmt"

	"github.com/dustin/go-humanize"

	vm "github.com/ericfisherdev/codelens/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/codelens/internal/application"
	"github.com/ericfisherdev/codelens/internal/domain/model"
)

const (
	pageTitle    = "🔍 CodeLens AI"
	pageSubtitle = "Intelligent code review powered by Groq"

	// acceptExtensions is only a hint to the browser file picker. Uploads of
	// any name are accepted and judged by their content.
	acceptExtensions = ".py,.js,.java,.cpp,.html,.css,.ts"
)

func toPageViewModel(
	sess *model.Session,
	credentialPresent bool,
	opts []application.ModelOption,
	maxUpload int64,
) vm.PageViewModel {
	return vm.PageViewModel{
		Title:             pageTitle,
		Subtitle:          pageSubtitle,
		CredentialPresent: credentialPresent,
		CredentialAlert:   vm.AlertViewModel{Level: vm.AlertError, Message: credentialMissingMessage},
		Models:            toModelOptionViewModels(opts, sess.Model),
		AcceptExtensions:  acceptExtensions,
		MaxUploadLabel:    sizeLabel(maxUpload),
		PasteText:         string(sess.Paste.Text),
		Input:             toInputPanelViewModel(sess, nil),
	}
}

func toModelOptionViewModels(opts []application.ModelOption, selected model.ModelID) []vm.ModelOptionViewModel {
	out := make([]vm.ModelOptionViewModel, 0, len(opts))
	for _, o := range opts {
		label := string(o.ID)
		if o.Default {
			label += " (default)"
		}
		out = append(out, vm.ModelOptionViewModel{
			ID:                string(o.ID),
			Label:             label,
			Selected:          o.ID == selected,
			Availability:      string(o.Availability),
			AvailabilityLabel: availabilityLabel(o.Availability),
		})
	}
	return out
}

func availabilityLabel(a application.Availability) string {
	switch a {
	case application.AvailabilityAvailable:
		return "available"
	case application.AvailabilityUnavailable:
		return "not currently served"
	default:
		return "availability unknown"
	}
}

// toInputPanelViewModel describes the session's resolved input. alert may be
// nil.
func toInputPanelViewModel(sess *model.Session, alert *vm.AlertViewModel) vm.InputPanelViewModel {
	p := vm.InputPanelViewModel{Alert: alert}

	in, ok := sess.Input()
	if !ok {
		return p
	}

	p.HasContent = true
	p.Source = string(in.Source)
	p.PreviewHTML = RenderSource(in.Code, in.FileName)
	p.Summary = fmt.Sprintf("%s, %s", pluralLines(in.Code.Lines()), humanize.IBytes(uint64(len(in.Code))))

	switch in.Source {
	case model.InputSourceFile:
		p.SourceLabel = "Uploaded file " + in.FileName
	default:
		p.SourceLabel = "Pasted code"
	}
	return p
}

func sizeLabel(n int64) string {
	return humanize.IBytes(uint64(n))
}

func pluralLines(n int) string {
	if n == 1 {
		return "1 line"
	}
	return fmt.Sprintf("%d lines", n)
}

func alertOf(level, message string) *vm.AlertViewModel {
	return &vm.AlertViewModel{Level: level, Message: message}
}
