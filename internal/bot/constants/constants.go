package constants

const (
	// Commands.
	StartCommandName = "start"

	// Accepted upload extension.
	JSONExtension = ".json"

	// Start Menu.
	StartText = "👋 <b>Instagram Data Processor</b>\n\n" +
		"Send me a <b>.json</b> file and I will convert it into formatted Excel sheets.\n\n" +
		"🔹 <b>Phone List:</b> Only numbers in email field.\n" +
		"🔹 <b>Mail List:</b> Emails or empty fields.\n\n" +
		"<i>Reply to any file to re-process it!</i>"

	// Processing.
	ProcessingText   = "🎨 <b>Styling and processing Excel files...</b>"
	FileCaption      = "✅ <b>Here is your file</b>"
	InvalidDataText  = "❌ Error: Invalid JSON or empty data."
	ErrorTextFormat  = "❌ Error: %s"
	FileTooLargeText = "❌ Error: The file is too large to process."

	// Rejections.
	NotJSONText         = "⚠️ Please send a <b>.json</b> file."
	ReplyNotJSONText    = "⚠️ The original message is not a .json file."
	UnexpectedErrorText = "❌ Error: Something went wrong while processing your file."
)
