package app

// WarningKind classifies non-fatal storage problems.
type WarningKind string

const (
	WarningUnavailable WarningKind = "unavailable"
	WarningLoad        WarningKind = "load"
	WarningSave        WarningKind = "save"
)

// Warning is a dismissible notice for the user. The in-memory state is
// never rolled back when one is raised.
type Warning struct {
	Kind    WarningKind
	Message string
	Err     error
}

func unavailableWarning(err error) Warning {
	return Warning{
		Kind:    WarningUnavailable,
		Message: "Storage is not available. Your data won't be saved between sessions.",
		Err:     err,
	}
}

func loadWarning(record string, err error) Warning {
	return Warning{
		Kind:    WarningLoad,
		Message: "Failed to load " + record + " from storage",
		Err:     err,
	}
}

func saveWarning(record string, err error) Warning {
	return Warning{
		Kind:    WarningSave,
		Message: "Failed to save " + record + " to storage",
		Err:     err,
	}
}
