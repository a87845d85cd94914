package email

const templates = `
{{define "order_confirmation" -}}
Hi,

Thanks for your order {{.Order.Reference}}! We have received your payment
of {{.Order.Total}}.

Your items:
{{range .Items}}  - {{.Quantity}} x {{.Name}} ({{.Price}} each)
{{end}}
Pickup is scheduled for {{.Order.PickupAt.Format "Mon, 02 Jan 2006 15:04"}}.

See you soon,
The Crumbline Bakeshop
{{- end}}

{{define "order_status" -}}
Hi,

Your order {{.Reference}} is now: {{.Status}}.

The Crumbline Bakeshop
{{- end}}

{{define "booking_confirmation" -}}
Hi,

Your booking {{.Booking.Reference}} for "{{.Workshop.Title}}" is
confirmed: {{.Booking.Slots}} seat(s) on
{{.Workshop.HeldAt.Format "Mon, 02 Jan 2006 15:04"}}.

See you there,
The Crumbline Bakeshop
{{- end}}

{{define "booking_refund" -}}
Hi,

Unfortunately "{{.Workshop.Title}}" filled up before your payment
completed, so booking {{.Booking.Reference}} could not be confirmed.
Your payment of {{.Booking.Total}} will be refunded in full within a few
business days.

Sorry about that,
The Crumbline Bakeshop
{{- end}}

{{define "booking_status" -}}
Hi,

Your booking {{.Booking.Reference}} for "{{.Workshop.Title}}" is now:
{{.Booking.Status}}.

The Crumbline Bakeshop
{{- end}}
`
