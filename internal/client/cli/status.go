package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/machinewatch/internal/client/services"
	"github.com/dmitrijs2005/machinewatch/internal/models"
)

// Status prints the session and telemetry summary.
func (a *App) Status(ctx context.Context) error {
	fmt.Fprint(a.out, formatStatus(a.authService.Status(ctx)))
	return nil
}

func (a *App) prompt(ctx context.Context) string {
	return promptLabel(a.authService.Status(ctx))
}

// promptLabel renders the short status shown in the prompt, e.g.
// "(ashutosh technician connected)".
func promptLabel(st services.SystemStatus) string {
	if st.Identity == nil {
		return ""
	}
	parts := []string{st.Identity.Username, string(st.Identity.Role), st.Telemetry.String()}
	if st.Degraded {
		parts[2] = "degraded"
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func formatStatus(st services.SystemStatus) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session:   %s\n", st.State)
	if id := st.Identity; id != nil {
		fmt.Fprintf(&b, "User:      %s (%s)\n", displayName(id), id.Username)
		fmt.Fprintf(&b, "Role:      %s\n", id.Role)
		if id.AssignedLocation != "" || id.AssignedOffice != "" {
			fmt.Fprintf(&b, "Location:  %s\n", strings.Trim(id.AssignedOffice+", "+id.AssignedLocation, ", "))
		}
	}
	fmt.Fprintf(&b, "Telemetry: %s\n", st.Telemetry)
	if st.Degraded {
		fmt.Fprintf(&b, "Degraded:  %v\n", st.TelemetryErr)
	}
	if st.Restricted {
		b.WriteString("Mode:      restricted (built-in accounts only)\n")
	}
	return b.String()
}

func displayName(id *models.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	return id.Username
}
