package enrich

import (
	"fmt"
	"strings"
)

// summarySystem steers the model toward picking at most two charges and
// rewording them into short plain-English phrases joined by " | ".
const summarySystem = "You are an expert legal analyst and a creative writer for a crime-themed game. " +
	"You summarize criminal charges into clear, concise, impactful plain English. " +
	"You will be given one or more raw charge descriptions for a single individual.\n\n" +
	"Select up to two of the most unusual or story-worthy charges. Prefer charges describing " +
	"specific actions, especially those involving harm, significant illicit goods, or dramatic " +
	"events, over procedural violations like probation violations or failure to appear.\n\n" +
	"Rewrite each selected charge into a brief plain English phrase, ideally under 15 words. " +
	"If the raw charge includes quantities central to its severity (drug amounts, dollar values, " +
	"age ranges), fold a summarized version into the phrase, e.g. 'Theft Over $1000'.\n\n" +
	"If you selected two charges, join the two phrases with ' | '. If one, return just that " +
	"phrase. Return only the phrase(s), with no explanations, numbering, or other text.\n\n" +
	"Examples:\n" +
	"- ['AGG STALKING AFTER INJUNCTION'] -> Repeated Aggressive Stalking\n" +
	"- ['SEX BATT FAML/CUST VICT12-17', 'KIDNAPPING OF MINOR'] -> Sexual Battery on a Minor | Kidnapping a Minor\n" +
	"- ['MONEY LAUNDERING OVER $100,000'] -> Money Laundering Over $100K\n" +
	"- ['FAILURE TO APPEAR - MISDEMEANOR', 'GRAND THEFT - MOTOR VEHICLE', 'BURGLARY OF CONVEYANCE'] -> Grand Theft Auto | Vehicle Burglary"

// severitySystem asks for a bare one-word severity level.
const severitySystem = "You are a criminal justice expert classifying crime severity. " +
	"Classify the given crime description as exactly one of three levels:\n\n" +
	"HIGH: violent crimes, serious felonies, crimes involving weapons, sexual offenses, major " +
	"drug trafficking, armed robbery, murder, kidnapping, crimes against children.\n\n" +
	"MEDIUM: property crimes, significant drug possession, burglary, theft, fraud, non-violent " +
	"felonies, DUI, stalking, simple assault, identity theft.\n\n" +
	"LOW: minor offenses, misdemeanors, traffic violations, small drug possession, disorderly " +
	"conduct, trespassing, failure to appear, public intoxication.\n\n" +
	"Respond with ONLY one word: High, Medium, or Low."

// summaryPrompt renders the user message for the summary step. A single
// charge gets a singular intro so the model still rephrases it.
func summaryPrompt(details []string) string {
	var b strings.Builder
	if len(details) == 1 {
		b.WriteString("Here is the raw charge description for an individual:\n")
		b.WriteString(details[0])
	} else {
		b.WriteString("Here is a list of raw charge descriptions for an individual:\n")
		for i, d := range details {
			fmt.Fprintf(&b, "%d. %s\n", i+1, d)
		}
	}
	b.WriteString("\n\nProvide the plain English summary for up to two of the most significant charges, delimited by ' | ' if two are selected.")
	return b.String()
}

func severityPrompt(summary string) string {
	return "Classify the severity of this crime: " + summary
}
