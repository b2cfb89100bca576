// Package calendar creates and lists events on the user's primary Google
// Calendar.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, "Europe/Berlin", option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//
//	created, err := client.CreateEvent(ctx, calendar.EventInput{
//	    Summary: "Dentist",
//	    Start:   start,
//	    End:     start.Add(time.Hour),
//	})
//
//	today, err := client.ListEvents(ctx, dayStart, dayEnd, 0)
package calendar
