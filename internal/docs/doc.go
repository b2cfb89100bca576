// Package docs creates Google Docs and reads them back as plain text.
//
// Example usage:
//
//	client, err := docs.NewClient(ctx, option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//
//	doc, err := client.CreateDocument(ctx, "Go Study Plan", "Week 1: syntax\n")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(doc.URL)
package docs
