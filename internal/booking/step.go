package booking

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/wolfman30/cuddles-booking/internal/lookup"
	"github.com/wolfman30/cuddles-booking/internal/pricing"
	"github.com/wolfman30/cuddles-booking/internal/travel"
)

// Step is a state of the booking wizard.
type Step string

const (
	StepPetInfo        Step = "PET_INFO"
	StepParentInfo     Step = "PARENT_INFO"
	StepServiceDetails Step = "SERVICE_DETAILS"
	StepTravelCheck    Step = "TRAVEL_CHECK"
	StepConfirmation   Step = "CONFIRMATION"
)

// Steps lists the wizard states in order.
var Steps = []Step{StepPetInfo, StepParentInfo, StepServiceDetails, StepTravelCheck, StepConfirmation}

var (
	// ErrWrongStep is returned when an operation does not belong to the active step.
	ErrWrongStep = errors.New("booking: operation not allowed in current step")
	// ErrNoPreviousStep is returned by Back on the first step.
	ErrNoPreviousStep = errors.New("booking: already at first step")
	// ErrNoNextStep is returned by Next on the last step.
	ErrNoNextStep = errors.New("booking: already at last step")
)

// GuardError lists the checks that blocked a forward transition.
type GuardError struct {
	From   Step
	Failed []string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("booking: cannot leave %s: %s", e.From, strings.Join(e.Failed, "; "))
}

// guardInput is everything a guard may inspect.
type guardInput struct {
	draft  Draft
	table  pricing.Table
	travel lookup.State
}

type guard func(in guardInput) []string

type transition struct {
	next  Step
	guard guard
}

var transitions = map[Step]transition{
	StepPetInfo:        {next: StepParentInfo, guard: petInfoComplete},
	StepParentInfo:     {next: StepServiceDetails, guard: parentInfoComplete},
	StepServiceDetails: {next: StepTravelCheck, guard: serviceDetailsComplete},
	StepTravelCheck:    {next: StepConfirmation, guard: travelResolved},
}

func previous(s Step) (Step, bool) {
	for i, step := range Steps {
		if step == s && i > 0 {
			return Steps[i-1], true
		}
	}
	return "", false
}

func petInfoComplete(in guardInput) []string {
	var failed []string
	if strings.TrimSpace(in.draft.Pet.Name) == "" {
		failed = append(failed, "pet name is required")
	}
	switch in.draft.Pet.Sex {
	case SexMale, SexFemale:
	default:
		failed = append(failed, "sex must be male or female")
	}
	return failed
}

func parentInfoComplete(in guardInput) []string {
	var failed []string
	if len(strings.TrimSpace(in.draft.Parent.Name)) <= 2 {
		failed = append(failed, "parent name must be longer than 2 characters")
	}
	if PhoneDigits(in.draft.Parent.Phone) < 10 {
		failed = append(failed, "phone must contain at least 10 digits")
	}
	return failed
}

func serviceDetailsComplete(in guardInput) []string {
	var failed []string
	if _, ok := in.table[in.draft.Service.Kind]; !ok || in.draft.Service.Kind == "" {
		failed = append(failed, "service is required")
	}
	if len(strings.TrimSpace(in.draft.Service.Breed)) < 2 {
		failed = append(failed, "breed must be at least 2 characters")
	}
	if w := in.draft.Service.WeightLbs; w < MinWeightLbs || w > MaxWeightLbs {
		failed = append(failed, fmt.Sprintf("weight must be between %d and %d lbs", MinWeightLbs, MaxWeightLbs))
	}
	return failed
}

func travelResolved(in guardInput) []string {
	eval := in.travel.Evaluation
	switch {
	case in.travel.Status == lookup.StatusComputing:
		return []string{"travel fee is still being calculated"}
	case eval == nil:
		return []string{"travel fee has not been calculated"}
	case travel.NormalizeAddress(in.travel.Address) != travel.NormalizeAddress(in.draft.Address):
		return []string{"travel fee does not match the entered address"}
	case eval.Status == travel.StatusOutOfRange:
		return []string{"address is outside the service area"}
	}
	return nil
}

// PhoneDigits counts the numeric digits in phone, ignoring formatting.
func PhoneDigits(phone string) int {
	n := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
