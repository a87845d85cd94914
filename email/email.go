// Package email sends the transactional mails of the shop over SMTP.
// Every send is best-effort and expected to run through the background
// runner; a failed mail never fails the order it belongs to.
package email

import (
	"bytes"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/crumbline/bakeshop/core/order"
	"github.com/crumbline/bakeshop/core/workshop"
	"github.com/crumbline/bakeshop/core/workshoporder"
)

type Mailer struct {
	address  string
	password string
	host     string
	port     string
	from     string
	tmpl     *template.Template
}

func New(address, password, host, port, from string) *Mailer {
	return &Mailer{
		address:  address,
		password: password,
		host:     host,
		port:     port,
		from:     from,
		tmpl:     template.Must(template.New("email").Parse(templates)),
	}
}

func (m *Mailer) OrderConfirmation(to string, ord order.Order, items []order.Item) error {
	data := struct {
		Order order.Order
		Items []order.Item
	}{ord, items}
	return m.send(to, "Your order "+ord.Reference+" is confirmed", "order_confirmation", data)
}

func (m *Mailer) OrderStatus(to string, ord order.Order) error {
	return m.send(to, "Update on your order "+ord.Reference, "order_status", ord)
}

func (m *Mailer) BookingConfirmation(to string, bo workshoporder.WorkshopOrder, ws workshop.Workshop) error {
	data := struct {
		Booking  workshoporder.WorkshopOrder
		Workshop workshop.Workshop
	}{bo, ws}
	return m.send(to, "Your workshop booking "+bo.Reference+" is confirmed", "booking_confirmation", data)
}

func (m *Mailer) BookingRefund(to string, bo workshoporder.WorkshopOrder, ws workshop.Workshop) error {
	data := struct {
		Booking  workshoporder.WorkshopOrder
		Workshop workshop.Workshop
	}{bo, ws}
	return m.send(to, "Your workshop booking "+bo.Reference+" could not be confirmed", "booking_refund", data)
}

func (m *Mailer) BookingStatus(to string, bo workshoporder.WorkshopOrder, ws workshop.Workshop) error {
	data := struct {
		Booking  workshoporder.WorkshopOrder
		Workshop workshop.Workshop
	}{bo, ws}
	return m.send(to, "Update on your workshop booking "+bo.Reference, "booking_status", data)
}

func (m *Mailer) send(to, subject, name string, data any) error {
	var body bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("rendering template %s: %w", name, err)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.Write(body.Bytes())

	auth := smtp.PlainAuth("", m.address, m.password, m.host)
	if err := smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("sending %s mail to %s: %w", name, to, err)
	}
	return nil
}
