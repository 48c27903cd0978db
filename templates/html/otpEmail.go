package html

import (
	"fmt"
	"html"
)

// RenderOTPEmail returns the password reset email body with the one time
// passcode injected. User supplied values are escaped before templating.
func RenderOTPEmail(name, otp string, expiryMinutes int) string {
	safeName := html.EscapeString(name)
	safeOTP := html.EscapeString(otp)

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
    <div style="max-width: 480px; margin: auto; background: #ffffff; border-radius: 8px; padding: 24px;">
      <h2 style="color: #2e7d32;">AniResQ Password Reset</h2>
      <p>Hi %s,</p>
      <p>We received a request to reset your password. Use the code below to continue:</p>
      <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px; text-align: center; color: #2e7d32;">%s</p>
      <p>This code expires in %d minutes. If you did not request a reset, you can ignore this email.</p>
      <p style="color: #888; font-size: 12px;">AniResQ - connecting citizens and rescuers</p>
    </div>
  </body>
</html>`, safeName, safeOTP, expiryMinutes)
}
