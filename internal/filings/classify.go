package filings

import (
	"strings"
	"unicode"
)

// Classification helpers. Everything here is pure, tolerates nil and
// zero-value input, and never panics: these run on every list render.

// IsStatusCancelled reports whether the filing status is CANCELLED.
func IsStatusCancelled(f *Filing) bool { return f != nil && f.Status == StatusCancelled }

// IsStatusCompleted reports whether the filing status is COMPLETED.
func IsStatusCompleted(f *Filing) bool { return f != nil && f.Status == StatusCompleted }

// IsStatusCorrected reports whether the filing status is CORRECTED.
func IsStatusCorrected(f *Filing) bool { return f != nil && f.Status == StatusCorrected }

// IsStatusDeleted reports whether the filing status is DELETED.
func IsStatusDeleted(f *Filing) bool { return f != nil && f.Status == StatusDeleted }

// IsStatusDraft reports whether the filing status is DRAFT.
func IsStatusDraft(f *Filing) bool { return f != nil && f.Status == StatusDraft }

// IsStatusError reports whether the filing status is ERROR.
func IsStatusError(f *Filing) bool { return f != nil && f.Status == StatusError }

// IsStatusNew reports whether the filing status is NEW.
func IsStatusNew(f *Filing) bool { return f != nil && f.Status == StatusNew }

// IsStatusPaid reports whether the filing status is PAID.
func IsStatusPaid(f *Filing) bool { return f != nil && f.Status == StatusPaid }

// IsStatusPending reports whether the filing status is PENDING.
func IsStatusPending(f *Filing) bool { return f != nil && f.Status == StatusPending }

// IsStatusPendingCorrection reports whether the filing status is PENDING_CORRECTION.
func IsStatusPendingCorrection(f *Filing) bool {
	return f != nil && f.Status == StatusPendingCorrection
}

// IsStatusWithdrawn reports whether the filing status is WITHDRAWN.
func IsStatusWithdrawn(f *Filing) bool { return f != nil && f.Status == StatusWithdrawn }

// IsType reports whether the filing's type code equals t.
func IsType(f *Filing, t FilingType) bool { return f != nil && f.Name == t }

// IsTypeAGMExtension reports whether the filing is an AGM extension request.
func IsTypeAGMExtension(f *Filing) bool { return IsType(f, TypeAGMExtension) }

// IsTypeAGMLocationChange reports whether the filing is an AGM location change.
func IsTypeAGMLocationChange(f *Filing) bool { return IsType(f, TypeAGMLocationChange) }

// IsTypeAlteration reports whether the filing is an alteration.
func IsTypeAlteration(f *Filing) bool { return IsType(f, TypeAlteration) }

// IsTypeAmalgamationApplication reports whether the filing is an amalgamation application.
func IsTypeAmalgamationApplication(f *Filing) bool { return IsType(f, TypeAmalgamationApplication) }

// IsTypeAnnualReport reports whether the filing is an annual report.
func IsTypeAnnualReport(f *Filing) bool { return IsType(f, TypeAnnualReport) }

// IsTypeChangeOfAddress reports whether the filing is an address change.
func IsTypeChangeOfAddress(f *Filing) bool { return IsType(f, TypeChangeOfAddress) }

// IsTypeChangeOfDirectors reports whether the filing is a director change.
func IsTypeChangeOfDirectors(f *Filing) bool { return IsType(f, TypeChangeOfDirectors) }

// IsTypeChangeOfName reports whether the filing is a legal name change.
func IsTypeChangeOfName(f *Filing) bool { return IsType(f, TypeChangeOfName) }

// IsTypeChangeOfRegistration reports whether the filing is a change of registration.
func IsTypeChangeOfRegistration(f *Filing) bool { return IsType(f, TypeChangeOfRegistration) }

// IsTypeConsentContinuationOut reports whether the filing is a consent to continue out.
func IsTypeConsentContinuationOut(f *Filing) bool { return IsType(f, TypeConsentContinuationOut) }

// IsTypeContinuationIn reports whether the filing is a continuation in.
func IsTypeContinuationIn(f *Filing) bool { return IsType(f, TypeContinuationIn) }

// IsTypeContinuationOut reports whether the filing is a continuation out.
func IsTypeContinuationOut(f *Filing) bool { return IsType(f, TypeContinuationOut) }

// IsTypeConversion reports whether the filing is a record conversion.
func IsTypeConversion(f *Filing) bool { return IsType(f, TypeConversion) }

// IsTypeCorrection reports whether the filing is a correction.
func IsTypeCorrection(f *Filing) bool { return IsType(f, TypeCorrection) }

// IsTypeCourtOrder reports whether the filing is a court order.
func IsTypeCourtOrder(f *Filing) bool { return IsType(f, TypeCourtOrder) }

// IsTypeDissolution reports whether the filing is a dissolution.
func IsTypeDissolution(f *Filing) bool { return IsType(f, TypeDissolution) }

// IsTypeIncorporationApplication reports whether the filing is an incorporation application.
func IsTypeIncorporationApplication(f *Filing) bool { return IsType(f, TypeIncorporationApp) }

// IsTypePutBackOn reports whether the filing is a put back on.
func IsTypePutBackOn(f *Filing) bool { return IsType(f, TypePutBackOn) }

// IsTypeRegistrarsNotation reports whether the filing is a registrar's notation.
func IsTypeRegistrarsNotation(f *Filing) bool { return IsType(f, TypeRegistrarsNotation) }

// IsTypeRegistrarsOrder reports whether the filing is a registrar's order.
func IsTypeRegistrarsOrder(f *Filing) bool { return IsType(f, TypeRegistrarsOrder) }

// IsTypeRegistration reports whether the filing is a registration.
func IsTypeRegistration(f *Filing) bool { return IsType(f, TypeRegistration) }

// IsTypeRestoration reports whether the filing is a restoration.
func IsTypeRestoration(f *Filing) bool { return IsType(f, TypeRestoration) }

// IsTypeSpecialResolution reports whether the filing is a special resolution.
func IsTypeSpecialResolution(f *Filing) bool { return IsType(f, TypeSpecialResolution) }

// IsTypeTransition reports whether the filing is a transition application.
func IsTypeTransition(f *Filing) bool { return IsType(f, TypeTransition) }

// IsTypeStaff reports whether the filing is a staff-only filing type:
// registrar's notation or order, court order, put back on, or an
// administrative dissolution.
func IsTypeStaff(f *Filing) bool {
	return IsTypeRegistrarsNotation(f) ||
		IsTypeRegistrarsOrder(f) ||
		IsTypeCourtOrder(f) ||
		IsTypePutBackOn(f) ||
		IsTypeDissolutionAdministrative(f)
}

// subTypeAccessor extracts a candidate subtype code from one of the known
// record shapes, reporting whether the location was present at all.
type subTypeAccessor func(f *Filing) (string, bool)

// dissolutionSubTypeSources lists the locations a dissolution subtype may
// live in, in precedence order: the flat filingSubType field, the typed
// dissolution payload, and the task wrapper's data.dissolution payload.
// All three are live shapes; callers pass whichever their endpoint gave
// them, so every location must keep being checked.
var dissolutionSubTypeSources = []subTypeAccessor{
	func(f *Filing) (string, bool) { return f.FilingSubType, f.FilingSubType != "" },
	func(f *Filing) (string, bool) {
		if f.Dissolution == nil {
			return "", false
		}
		return f.Dissolution.DissolutionType, f.Dissolution.DissolutionType != ""
	},
	func(f *Filing) (string, bool) {
		if f.Data == nil || f.Data.Dissolution == nil {
			return "", false
		}
		return f.Data.Dissolution.DissolutionType, f.Data.Dissolution.DissolutionType != ""
	},
}

// restorationSubTypeSources mirrors dissolutionSubTypeSources for the
// restoration payload's type field.
var restorationSubTypeSources = []subTypeAccessor{
	func(f *Filing) (string, bool) { return f.FilingSubType, f.FilingSubType != "" },
	func(f *Filing) (string, bool) {
		if f.Restoration == nil {
			return "", false
		}
		return f.Restoration.Type, f.Restoration.Type != ""
	},
	func(f *Filing) (string, bool) {
		if f.Data == nil || f.Data.Restoration == nil {
			return "", false
		}
		return f.Data.Restoration.Type, f.Data.Restoration.Type != ""
	},
}

func matchesSubType(f *Filing, sources []subTypeAccessor, want string) bool {
	if f == nil {
		return false
	}
	for _, source := range sources {
		if got, ok := source(f); ok && got == want {
			return true
		}
	}
	return false
}

// IsTypeDissolutionAdministrative reports whether the filing is an administrative dissolution.
func IsTypeDissolutionAdministrative(f *Filing) bool {
	return matchesSubType(f, dissolutionSubTypeSources, DissolutionAdministrative)
}

// IsTypeDissolutionInvoluntary reports whether the filing is an involuntary dissolution.
func IsTypeDissolutionInvoluntary(f *Filing) bool {
	return matchesSubType(f, dissolutionSubTypeSources, DissolutionInvoluntary)
}

// IsTypeDissolutionVoluntary reports whether the filing is a voluntary dissolution.
func IsTypeDissolutionVoluntary(f *Filing) bool {
	return matchesSubType(f, dissolutionSubTypeSources, DissolutionVoluntary)
}

// IsTypeRestorationFull reports whether the filing is a full restoration.
func IsTypeRestorationFull(f *Filing) bool {
	return matchesSubType(f, restorationSubTypeSources, RestorationFull)
}

// IsTypeRestorationLimited reports whether the filing is a limited restoration.
func IsTypeRestorationLimited(f *Filing) bool {
	return matchesSubType(f, restorationSubTypeSources, RestorationLimited)
}

// IsTypeRestorationExtension reports whether the filing is a limited restoration extension.
func IsTypeRestorationExtension(f *Filing) bool {
	return matchesSubType(f, restorationSubTypeSources, RestorationExtension)
}

// IsTypeRestorationConversion reports whether the filing converts a limited restoration to full.
func IsTypeRestorationConversion(f *Filing) bool {
	return matchesSubType(f, restorationSubTypeSources, RestorationConversion)
}

// IsPayMethodCreditCard reports whether the filing was paid by credit card.
func IsPayMethodCreditCard(f *Filing) bool { return f != nil && f.PaymentMethod == PayMethodCreditCard }

// IsPayMethodDirectPay reports whether the filing was paid by direct pay.
func IsPayMethodDirectPay(f *Filing) bool { return f != nil && f.PaymentMethod == PayMethodDirectPay }

// IsPayMethodOnlineBanking reports whether the filing was paid by online banking.
func IsPayMethodOnlineBanking(f *Filing) bool {
	return f != nil && f.PaymentMethod == PayMethodOnlineBanking
}

// UnknownSentinel is the display name used when a subtype code is not recognized.
const UnknownSentinel = "Unknown"

// unknownTypeSentinel is the display name used when no type code is present at all.
const unknownTypeSentinel = "Unknown Type"

var filingTypeNames = map[FilingType]string{
	TypeAGMExtension:            "Request for AGM Extension",
	TypeAGMLocationChange:       "AGM Location Change",
	TypeAlteration:              "Alteration",
	TypeAmalgamationApplication: "Amalgamation Application",
	TypeAnnualReport:            "Annual Report",
	TypeChangeOfAddress:         "Address Change",
	TypeChangeOfDirectors:       "Director Change",
	TypeChangeOfName:            "Legal Name Change",
	TypeChangeOfRegistration:    "Change of Registration",
	TypeConsentContinuationOut:  "6-Month Consent to Continue Out",
	TypeContinuationIn:          "Continuation Application",
	TypeContinuationOut:         "Continuation Out",
	TypeConversion:              "Record Conversion",
	TypeCorrection:              "Correction",
	TypeCourtOrder:              "Court Order",
	TypeDissolution:             "Dissolution",
	TypeIncorporationApp:        "Incorporation Application",
	TypePutBackOn:               "Put Back On",
	TypeRegistrarsNotation:      "Registrar's Notation",
	TypeRegistrarsOrder:         "Registrar's Order",
	TypeRegistration:            "Registration",
	TypeRestoration:             "Restoration Application",
	TypeSpecialResolution:       "Special Resolution",
	TypeTransition:              "Transition Application",
}

var restorationNames = map[string]string{
	RestorationFull:       "Full Restoration",
	RestorationLimited:    "Limited Restoration",
	RestorationExtension:  "Limited Restoration Extension",
	RestorationConversion: "Conversion to Full Restoration",
}

// FilingTypeToName maps a filing-type code to its display name. Annual
// reports get the AGM year appended when supplied; restorations dispatch
// on subtype. A missing code yields "Unknown Type", and an unmapped but
// well-formed code falls back to CamelCaseToWords so it still renders as
// a readable label.
func FilingTypeToName(t FilingType, agmYear string, subType string) string {
	if t == "" {
		return unknownTypeSentinel
	}
	switch t {
	case TypeAnnualReport:
		name := filingTypeNames[TypeAnnualReport]
		if agmYear != "" {
			return name + " (" + agmYear + ")"
		}
		return name
	case TypeRestoration:
		if name, ok := restorationNames[subType]; ok {
			return name
		}
		return UnknownSentinel
	}
	if name, ok := filingTypeNames[t]; ok {
		return name
	}
	return CamelCaseToWords(string(t))
}

// DissolutionTypeToName maps a dissolution subtype to its display name.
// Firms label voluntary dissolutions as a statement of dissolution.
func DissolutionTypeToName(isFirm bool, subType string) string {
	switch subType {
	case DissolutionAdministrative:
		return "Administrative Dissolution"
	case DissolutionInvoluntary:
		return "Involuntary Dissolution"
	case DissolutionVoluntary:
		if isFirm {
			return "Statement of Dissolution"
		}
		return "Voluntary Dissolution"
	}
	return UnknownSentinel
}

// CamelCaseToWords splits a camelCase or PascalCase identifier into
// space-separated words and capitalizes the first character. Embedded
// capitals keep their casing. Empty input yields an empty string.
func CamelCaseToWords(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := []rune(b.String())
	out[0] = unicode.ToUpper(out[0])
	return string(out)
}
