package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/task"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
)

// GenerateResponseFromTaskResult renders the user-facing message for a task.
// Failed tasks mention the error; completed tasks mention the platform and
// any URL or ID the connector returned.
func GenerateResponseFromTaskResult(t *task.Task) string {
	switch t.Status {
	case task.StatusFailed:
		return fmt.Sprintf("Lo siento, no pude completar la tarea en %s: %s", displayName(t.Target()), t.Error)
	case task.StatusCompleted:
	default:
		return "Tu tarea está en curso. Te avisaré cuando termine."
	}

	r := t.Result
	if r == nil {
		r = &task.Result{Platform: t.Target()}
	}
	name := displayName(r.Platform)

	var b strings.Builder
	switch t.Type {
	case task.TypeSocialPost:
		fmt.Fprintf(&b, "¡Listo! He publicado tu contenido en %s.", name)
		writeLocation(&b, r, "publicación")

	case task.TypeSocialSchedule:
		fmt.Fprintf(&b, "¡Listo! He programado tu publicación en %s", name)
		if p, ok := t.Params.(task.SocialScheduleParams); ok {
			fmt.Fprintf(&b, " para el %s", p.ScheduledAt.Format("02/01/2006 a las 15:04"))
		}
		b.WriteString(".")
		writeLocation(&b, r, "publicación")

	case task.TypeSocialAnalytics:
		fmt.Fprintf(&b, "Estas son las métricas de %s", name)
		if period, ok := r.Data["period"].(string); ok {
			fmt.Fprintf(&b, " (%s)", periodLabel(period))
		}
		b.WriteString(":")
		writeMetrics(&b, dataValue[map[string]float64](r.Data, "metrics"))

	case task.TypeEmailCampaign:
		fmt.Fprintf(&b, "He creado la campaña en %s", name)
		if r.CampaignID != "" {
			fmt.Fprintf(&b, " (ID: %s)", r.CampaignID)
		}
		listName, _ := r.Data["listName"].(string)
		if sent, _ := r.Data["sent"].(bool); sent {
			fmt.Fprintf(&b, " y la he enviado a la lista %q.", listName)
		} else {
			fmt.Fprintf(&b, " para la lista %q. Quedó como borrador, lista para enviar.", listName)
		}
		if r.URL != "" {
			fmt.Fprintf(&b, " Puedes verla aquí: %s", r.URL)
		}

	case task.TypeEmailList:
		writeListResult(&b, name, r)

	case task.TypeEmailAnalytics:
		fmt.Fprintf(&b, "Este es el informe de tu campaña en %s", name)
		if r.CampaignID != "" {
			fmt.Fprintf(&b, " (ID: %s)", r.CampaignID)
		}
		b.WriteString(":")
		writeMetrics(&b, dataValue[map[string]float64](r.Data, "metrics"))

	default:
		fmt.Fprintf(&b, "Tarea completada en %s.", name)
	}
	return b.String()
}

func writeLocation(b *strings.Builder, r *task.Result, noun string) {
	switch {
	case r.URL != "":
		fmt.Fprintf(b, " Puedes verla aquí: %s", r.URL)
	case r.PostID != "":
		fmt.Fprintf(b, " ID de la %s: %s", noun, r.PostID)
	}
}

func writeListResult(b *strings.Builder, name string, r *task.Result) {
	action, _ := r.Data["action"].(string)
	switch action {
	case task.ListActionCreate:
		l := dataValue[connector.List](r.Data, "list")
		fmt.Fprintf(b, "He creado la lista %q en %s", l.Name, name)
		if l.ID != "" {
			fmt.Fprintf(b, " (ID: %s)", l.ID)
		}
		b.WriteString(".")
	case task.ListActionSubscribe:
		l := dataValue[connector.List](r.Data, "list")
		email, _ := r.Data["email"].(string)
		fmt.Fprintf(b, "He añadido a %s a la lista %q en %s.", email, l.Name, name)
	default:
		lists := dataValue[[]connector.List](r.Data, "lists")
		if len(lists) == 0 {
			fmt.Fprintf(b, "No tienes listas de correo en %s.", name)
			return
		}
		parts := make([]string, len(lists))
		for i, l := range lists {
			parts[i] = fmt.Sprintf("%s (%d)", l.Name, l.MemberCount)
		}
		fmt.Fprintf(b, "Tienes %d listas en %s: %s.", len(lists), name, strings.Join(parts, ", "))
	}
}

// dataValue reads key from a result's data as T. Results restored from
// history hold decoded JSON instead of the connector types, so those are
// converted through JSON.
func dataValue[T any](data map[string]any, key string) T {
	var out T
	v, ok := data[key]
	if !ok || v == nil {
		return out
	}
	if typed, ok := v.(T); ok {
		return typed
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var zero T
		return zero
	}
	return out
}

func writeMetrics(b *strings.Builder, metrics map[string]float64) {
	if len(metrics) == 0 {
		b.WriteString(" todavía no hay datos disponibles.")
		return
	}
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(b, " %s: %s", k, formatMetric(metrics[k]))
	}
	b.WriteString(".")
}

func formatMetric(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func periodLabel(period string) string {
	switch period {
	case "day":
		return "último día"
	case "month":
		return "último mes"
	default:
		return "última semana"
	}
}
