package rules

import (
	"sync"

	"github.com/leadsend/replytag/internal/label"
)

// Pattern library for the default table.
var (
	// Unsubscribe / opt-out requests
	unsubscribeMatchers = []Matcher{
		Pattern(`\bunsubscribe\b`),
		Pattern(`\bopt[- ]?out\b`),
		Pattern(`\bremove (me|us)\b`),
		Pattern(`\bstop (all )?(emails?|emailing|messages|messaging)\b`),
		Pattern(`\bno (more|further) emails?\b`),
		Pattern(`\bgdpr\b`),
		Pattern(`\bdelete my (data|info|information|details)\b`),
		Pattern(`\b(cease|desist)\b`),
		Pattern(`\bforget me\b`),
		Pattern(`\bprivacy request\b`),
		Phrases(
			"do not contact",
			"don't contact me",
			"take me off",
			"get lost",
			"fuck off",
			"block you",
		),
	}

	// Bounce and delivery failure notices
	bounceMatchers = []Matcher{
		Pattern(`\baddress (not found|invalid|unknown)\b`),
		Pattern(`\bdoes not exist\b`),
		Pattern(`\buser (unknown|not found)\b`),
		Pattern(`\bmailbox (is )?(full|unavailable)\b`),
		Pattern(`\b550\b.*(invalid|unknown|user)`),
		Pattern(`\bquota exceeded\b`),
		Pattern(`\bdelivery (has )?(failed|failure)\b`),
		Pattern(`\bpermanent (failure|error)\b`),
		Pattern(`\bdomain .+ not found\b`),
		Pattern(`\bhost .+ unreachable\b`),
		Phrases(
			"undeliverable",
			"mail delivery subsystem",
			"could not be delivered",
			"returned mail",
		),
	}

	// Out-of-office and autoreplies
	outOfOfficeMatchers = []Matcher{
		Pattern(`\bout of (the )?office\b`),
		Pattern(`\bOOO\b`),
		Pattern(`\bon (annual|sick|parental|maternity|paternity|medical) leave\b`),
		Pattern(`\baway from (my |the )?(desk|office)\b`),
		Pattern(`\blimited (email|e-mail) access\b`),
		Pattern(`\breturning on\b`),
		Pattern(`\bvacation\b`),
		Pattern(`\bback (on|by) .*(monday|tuesday|wednesday|thursday|friday)`),
		Pattern(`\bauto(\s|-)?reply\b`),
		Pattern(`\bon PTO\b`),
		Pattern(`\b(bank|public) holiday\b`),
		Pattern(`\boffice (is )?closed\b`),
		Phrases(
			"on leave",
			"traveling",
			"travelling",
			"will respond after",
			"automatic reply",
		),
	}

	// Wrong person / mis-routed
	wrongPersonMatchers = []Matcher{
		Pattern(`\bwrong (person|contact|department)\b`),
		Pattern(`\bnot the (right|correct) (contact|person)\b`),
		Pattern(`\bno longer (handle|responsible|with)\b`),
		Pattern(`\bmoved to (a )?new (role|position)\b`),
		Pattern(`\bplease contact .+ instead\b`),
		Pattern(`\breach out to (someone else|my colleague|our)\b`),
		Pattern(`\bforwarding (this |it )?to\b`),
		Pattern(`\bcc['’]?d? the (appropriate|correct|right)\b`),
		Pattern(`\bnot (the|a) decision[- ]maker\b`),
		Pattern(`\bprocurement\b`),
		Pattern(`\btry sales@`),
		Pattern(`\bplease email \S+@\S+\.\w+`),
		Phrases(
			"not my responsibility",
			"not my department",
			"i no longer handle",
		),
	}

	// Explicit rejection
	notInterestedMatchers = []Matcher{
		Pattern(`\bnot (interested|a fit|required|relevant|needed)\b`),
		Pattern(`\bno (need|thanks|interest|budget)\b`),
		Pattern(`\bwe'?ll pass\b`),
		Pattern(`\bpass for now\b`),
		Pattern(`\bhappy with (our )?(current|existing)\b`),
		Pattern(`\b(already|currently) using\b`),
		Pattern(`\busing (a )?competitor\b`),
		Pattern(`\bdeclin(e|ing)\b`),
		Pattern(`\bnot a priority\b`),
		Pattern(`\bstop contacting\b`),
		Phrases(
			"we're good",
			"not looking to change",
			"not the right time",
			"irrelevant",
			"unrelated",
		),
	}

	// Meeting booked / scheduling
	meetingBookedMatchers = []Matcher{
		Pattern(`\bcalendar (link|invite|slot|event)\b`),
		Pattern(`\bschedule (a )?(call|meeting|demo)\b`),
		Pattern(`\bhere'?s? my (calendly|scheduler|calendar|hubspot link)\b`),
		Pattern(`\bbook(ed)? (a )?(slot|time)\b`),
		Pattern(`\binvite (sent|attached)\b`),
		Pattern(`\bconfirmed[:\-]?\s.*(call|demo|meeting)\b`),
		Pattern(`\blooking forward to (our|the) (call|meeting|demo)\b`),
		Pattern(`\bsee you (on|tomorrow|then)\b`),
		Pattern(`\b(zoom|teams|google meet) link\b`),
		Phrases(
			"meeting booked",
			"scheduled a meeting",
			"added to calendar",
			"demo scheduled",
			"call confirmed",
			"meet you in the call",
		),
	}

	// Deal won / clear go-ahead
	wonMatchers = []Matcher{
		Pattern(`\bready to (sign|move forward|proceed|buy|purchase)\b`),
		Pattern(`\bprocessing (the )?payment\b`),
		Pattern(`\bpayment (processed|sent)\b`),
		Pattern(`\bcontract (signed|attached|returned)\b`),
		Pattern(`\bapproved\b.*\bbudget\b`),
		Pattern(`\bPO\b.*\b(attached|issued)\b`),
		Pattern(`\b(generated|issued) (a )?purchase order\b`),
		Pattern(`\bkick[- ]?off\b`),
		Pattern(`\blet'?s start (the )?implementation\b`),
		Pattern(`\bonboard us\b`),
		Pattern(`\bselected\b.*\bproposal\b`),
	}

	// Interested but not booked
	interestedMatchers = []Matcher{
		Pattern(`\binterested\b`),
		Pattern(`\bsounds (good|great|interesting|promising|like a plan)\b`),
		Pattern(`\b(send|share|provide)\b.*\b(more )?(info|information|details|deck|pricing|quote)\b`),
		Pattern(`\b(could|can) you (send|share|provide)\b`),
		Pattern(`\btell me more\b`),
		Pattern(`\bkeen to\b`),
		Pattern(`\bpricing\b`),
		Pattern(`\blike to (discuss|evaluate|know)\b`),
		Pattern(`\bproof of concept\b`),
		Pattern(`\blooks (promising|great|good)\b`),
		Pattern(`\bnext steps\b`),
		Pattern(`\bwhat['’]?s involved\b`),
		Pattern(`\blove to learn\b`),
		Pattern(`\bsounds like a fit\b`),
		Pattern(`\b(sure|okay|ok),? (send|share) (it|them|over)\b`),
		Pattern(`\bplease advise\b`),
		Pattern(`\bcurious to\b`),
		Pattern(`\bopen to\b`),
		Phrases(
			"please send",
			"sure, send",
			"i'd like to know more",
			"i would like to know more",
		),
	}
)

// DefaultTable returns the built-in rule table, built once on first use.
// Unambiguous categories carry higher calibration than soft sentiment ones.
var DefaultTable = sync.OnceValue(func() *Table {
	t, err := NewTable(
		Rule{Category: label.Unsubscribed, Confidence: 0.99, Matchers: unsubscribeMatchers},
		Rule{Category: label.Bounced, Confidence: 0.98, Matchers: bounceMatchers},
		Rule{Category: label.OutOfOffice, Confidence: 0.95, Matchers: outOfOfficeMatchers},
		Rule{Category: label.WrongPerson, Confidence: 0.95, Matchers: wrongPersonMatchers},
		Rule{Category: label.NotInterested, Confidence: 0.90, Matchers: notInterestedMatchers},
		Rule{Category: label.MeetingBooked, Confidence: 0.97, Matchers: meetingBookedMatchers},
		Rule{Category: label.Won, Confidence: 0.97, Matchers: wonMatchers},
		Rule{Category: label.Interested, Confidence: 0.96, Matchers: interestedMatchers},
	)
	if err != nil {
		panic(err)
	}
	return t
})
