package billing

import "fmt"

// buildPaymentFailedEmail returns the notification sent when an invoice
// payment fails and the restaurant is deactivated.
func buildPaymentFailedEmail(restaurantName string) (subject, html, plainText string) {
	subject = "Payment failed for your Menuvio subscription"

	html = fmt.Sprintf(`
		<html>
		<body>
			<h2>Payment Failed</h2>
			<p>Hi,</p>
			<p>We could not collect the latest payment for <strong>%s</strong>, so your menu has been taken offline.</p>
			<p>Please update your payment method in the billing portal to restore access. Your data is untouched and everything comes back as soon as a payment succeeds.</p>
			<p>Thanks,<br>The Menuvio Team</p>
		</body>
		</html>
	`, restaurantName)

	plainText = fmt.Sprintf(`Hi,

We could not collect the latest payment for %s, so your menu has been taken offline.

Please update your payment method in the billing portal to restore access. Your data is untouched and everything comes back as soon as a payment succeeds.

Thanks,
The Menuvio Team
`, restaurantName)

	return
}
